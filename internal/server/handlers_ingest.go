package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mwilhelm/applypilot/internal/ingestion"
	"github.com/mwilhelm/applypilot/internal/types"
)

// handleIngestJob turns a posting URL or pasted text into clean job text the
// client can feed straight into an operation request.
func (s *Server) handleIngestJob(w http.ResponseWriter, r *http.Request) {
	var req types.IngestJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		result *ingestion.Result
		err    error
	)
	if req.URL != "" {
		result, err = s.ingestor.FromURL(r.Context(), req.URL)
	} else {
		result, err = s.ingestor.FromText(req.Text)
	}
	if err != nil {
		if errors.Is(err, ingestion.ErrEmptyPosting) {
			s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadGateway, "Ingestion failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}
