// Package middleware provides HTTP middleware for the daemon's API surface.
package middleware

import (
	"net/http"
	"strings"
)

// TokenValidator validates a Bearer token. Keeping this an interface lets
// the middleware work with any session service without an import cycle.
type TokenValidator interface {
	ValidateToken(tokenString string) error
}

// Auth creates middleware that requires a valid Bearer token on every
// request it wraps.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := validator.ValidateToken(token); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an Authorization header. The "Bearer"
// prefix is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
