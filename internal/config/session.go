package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// SessionConfig holds configuration for session token generation and
// validation after a successful unlock.
type SessionConfig struct {
	Secret          string
	ExpirationHours int
}

// NewSessionConfig creates a session configuration from environment
// variables. It reads APPLYPILOT_SESSION_SECRET and
// APPLYPILOT_SESSION_HOURS (default: 12). When no secret is set, an
// ephemeral one is generated, so sessions do not survive a daemon restart.
func NewSessionConfig() (*SessionConfig, error) {
	secret := os.Getenv("APPLYPILOT_SESSION_SECRET")
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = generated
	}

	expirationStr := os.Getenv("APPLYPILOT_SESSION_HOURS")
	if expirationStr == "" {
		expirationStr = "12" // default
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid APPLYPILOT_SESSION_HOURS: %v", err)
	}

	config := &SessionConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("session secret cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("APPLYPILOT_SESSION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// randomSecret returns 32 bytes of cryptographic randomness, hex encoded.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
