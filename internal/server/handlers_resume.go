package server

import (
	"encoding/json"
	"net/http"

	"github.com/mwilhelm/applypilot/internal/types"
)

// defaultResumeLabel names the master resume when the client does not pick
// one. Multiple labelled resumes are supported for users who keep variants.
const defaultResumeLabel = "master"

func resumeLabel(r *http.Request) string {
	if label := r.URL.Query().Get("label"); label != "" {
		return label
	}
	return defaultResumeLabel
}

// handleGetResume returns the stored master resume.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	label := resumeLabel(r)

	stored, err := s.db.GetResume(r.Context(), label)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if stored == nil {
		notFound := &ErrNotFound{What: "resume", ID: label}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stored)
}

// handlePutResume stores or replaces the master resume under its label.
func (s *Server) handlePutResume(w http.ResponseWriter, r *http.Request) {
	var resume types.Resume
	if err := json.NewDecoder(r.Body).Decode(&resume); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if resume.PersonalInfo.Name == "" {
		invalid := &ErrValidation{Message: "resume personal info must include a name"}
		s.errorResponse(w, HTTPStatus(invalid), invalid.Error())
		return
	}

	stored, err := s.db.UpsertResume(r.Context(), resumeLabel(r), resume)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stored)
}
