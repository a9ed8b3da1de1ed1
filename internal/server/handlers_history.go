package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mwilhelm/applypilot/internal/db"
)

// handleListHistory lists recorded generations, newest first. Optional query
// parameters: kind, company, status, limit.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	filters := db.GenerationFilters{
		Kind:    r.URL.Query().Get("kind"),
		Company: r.URL.Query().Get("company"),
		Status:  r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}

	generations, err := s.db.ListGenerations(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"generations": generations,
		"count":       len(generations),
	})
}

// handleGetHistory returns one recorded generation by operation ID.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid generation ID format")
		return
	}

	gen, err := s.db.GetGeneration(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if gen == nil {
		notFound := &ErrNotFound{What: "generation", ID: idStr}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, gen)
}
