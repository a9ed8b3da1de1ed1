package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// UnlockConfig holds configuration for hashing and verifying the local
// unlock passphrase that guards the daemon's personal data.
type UnlockConfig struct {
	BcryptCost int
	Pepper     string // optional global secret mixed into every passphrase
}

// NewUnlockConfig creates an unlock configuration from environment
// variables. It reads APPLYPILOT_BCRYPT_COST (default: 12) and optionally
// APPLYPILOT_PEPPER.
func NewUnlockConfig() (*UnlockConfig, error) {
	costStr := os.Getenv("APPLYPILOT_BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid APPLYPILOT_BCRYPT_COST: %v", err)
	}

	config := &UnlockConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("APPLYPILOT_PEPPER"), // empty if not set
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *UnlockConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassphrase hashes an unlock passphrase using bcrypt (with optional pepper).
func (c *UnlockConfig) HashPassphrase(passphrase string) (string, error) {
	input := passphrase
	if c.Pepper != "" {
		input = passphrase + c.Pepper
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}

	return string(hash), nil
}

// VerifyPassphrase verifies a passphrase against a stored hash (with optional pepper).
func (c *UnlockConfig) VerifyPassphrase(passphrase, storedHash string) bool {
	input := passphrase
	if c.Pepper != "" {
		input = passphrase + c.Pepper
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(input))
	return err == nil
}
