package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// EndpointConfig is the rate tier for one endpoint pattern. A Path ending in
// "/" matches by prefix. Limit 0 means unlimited.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int           // burst capacity, defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

func defaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model calls: each one is a multi-second CLI round trip.
		{Path: "/api/operations/refine", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/operations/cover-letter", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Unlock attempts: slow down passphrase guessing.
		{Path: "/auth/unlock", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Outbound fetches of job boards.
		{Path: "/api/ingest/job", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Writes.
		{Path: "/api/settings", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/resume", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},

		// SSE stream: one long-lived request per UI surface, effectively free.
		{Path: "/api/events", Method: "GET", Limit: 0},

		// Reads fall through to the default tier.
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
