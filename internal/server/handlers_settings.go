package server

import (
	"encoding/json"
	"net/http"

	"github.com/mwilhelm/applypilot/internal/types"
)

// handleGetSettings returns the persisted prompt defaults.
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.settings.Get())
}

// handlePutSettings replaces the prompt defaults. The whole object is
// replaced, not patched; the UI always sends the full settings form.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var defaults types.PromptOptions
	if err := json.NewDecoder(r.Body).Decode(&defaults); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.settings.Update(defaults)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}
