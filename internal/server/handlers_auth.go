package server

import (
	"encoding/json"
	"net/http"

	"github.com/mwilhelm/applypilot/internal/types"
)

// UnlockResponse carries a fresh session token.
type UnlockResponse struct {
	Token string `json:"token"`
}

// handleUnlock verifies the user's passphrase against the configured bcrypt
// hash and issues a session token. There are no accounts: the daemon guards
// one person's data behind one passphrase.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if s.unlockHash == "" {
		err := &ErrUnlockNotConfigured{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req types.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.unlockCfg.VerifyPassphrase(req.Passphrase, s.unlockHash) {
		err := &ErrInvalidPassphrase{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, UnlockResponse{Token: token})
}
