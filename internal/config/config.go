// Package config provides configuration loading and validation for the
// ApplyPilot daemon and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents application configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// AI backend
	Backend   string   `json:"backend,omitempty"`    // "cli" (default) or "gemini"
	Tool      string   `json:"tool,omitempty"`       // CLI tool binary name
	ToolArgs  []string `json:"tool_args,omitempty"`  // extra arguments for the CLI tool
	Model     string   `json:"model,omitempty"`      // model name for the gemini backend
	APIKeyEnv string   `json:"api_key_env,omitempty"` // env var holding the API key

	// Operation behavior
	MaxRetries     int  `json:"max_retries,omitempty"`     // extra attempts after validation failure
	TimeoutSeconds int  `json:"timeout_seconds,omitempty"` // per-attempt CLI timeout
	KeepMarkdown   bool `json:"keep_markdown,omitempty"`   // skip markdown stripping in results

	// Persistence and serving
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL
	ListenAddr   string `json:"listen_addr,omitempty"`   // daemon bind address
	SettingsPath string `json:"settings_path,omitempty"` // prompt defaults store location
	UnlockHash   string `json:"unlock_hash,omitempty"`   // bcrypt hash of the unlock passphrase

	// Job ingestion
	UseBrowser bool `json:"use_browser,omitempty"` // headless browser for SPA job pages
	Verbose    bool `json:"verbose,omitempty"`     // print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; CLI flag validation handles those after merging.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", "cli", "gemini":
	default:
		return fmt.Errorf("config error: 'backend' must be \"cli\" or \"gemini\", got %q", c.Backend)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}

	if c.Backend == "gemini" && c.APIKeyEnv != "" && os.Getenv(c.APIKeyEnv) == "" {
		return fmt.Errorf("config error: env var %s named by 'api_key_env' is not set", c.APIKeyEnv)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This applies config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Backend == "" {
		result.Backend = defaults.Backend
	}
	if result.Tool == "" {
		result.Tool = defaults.Tool
	}
	if len(result.ToolArgs) == 0 {
		result.ToolArgs = defaults.ToolArgs
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKeyEnv == "" {
		result.APIKeyEnv = defaults.APIKeyEnv
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.SettingsPath == "" {
		result.SettingsPath = defaults.SettingsPath
	}
	if result.UnlockHash == "" {
		result.UnlockHash = defaults.UnlockHash
	}

	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.TimeoutSeconds == 0 {
		if defaults.TimeoutSeconds > 0 {
			result.TimeoutSeconds = defaults.TimeoutSeconds
		} else {
			result.TimeoutSeconds = 120
		}
	}

	// Bool fields are not merged: unset and false are indistinguishable,
	// so CLI flags always win for those.

	return result
}
