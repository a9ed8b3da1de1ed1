package server

import (
	"net/http"
)

// ProviderStatusResponse describes the configured AI backend's availability.
type ProviderStatusResponse struct {
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
}

// handleProviderStatus reports whether the configured backend can serve
// operations, including the resolved binary path for the CLI backend.
func (s *Server) handleProviderStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.providerStatus(r))
}

// handleProviderRefresh clears the detector cache and re-detects. The UI
// calls this after the user installs the CLI tool mid-session.
func (s *Server) handleProviderRefresh(w http.ResponseWriter, r *http.Request) {
	if s.detector != nil {
		s.detector.ClearCache()
	}
	s.jsonResponse(w, http.StatusOK, s.providerStatus(r))
}

func (s *Server) providerStatus(r *http.Request) ProviderStatusResponse {
	status := ProviderStatusResponse{
		Provider:  s.provider.Name(),
		Available: s.provider.Available(r.Context()),
	}
	if s.detector != nil && s.toolName != "" {
		if path, found := s.detector.Detect(r.Context(), s.toolName); found {
			status.Path = path
		}
	}
	return status
}
