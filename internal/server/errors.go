package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidPassphrase indicates the unlock passphrase did not match.
type ErrInvalidPassphrase struct{}

func (e *ErrInvalidPassphrase) Error() string {
	return "invalid passphrase"
}

// ErrUnlockNotConfigured indicates no passphrase hash is set, so there is
// nothing to unlock against.
type ErrUnlockNotConfigured struct{}

func (e *ErrUnlockNotConfigured) Error() string {
	return "unlock is not configured; the daemon is running in local-trust mode"
}

// ErrNotFound indicates a requested record does not exist.
type ErrNotFound struct {
	What string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.ID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Message
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidPassphrase:
		return http.StatusUnauthorized
	case *ErrUnlockNotConfigured:
		return http.StatusConflict
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
