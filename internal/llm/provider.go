// Package llm abstracts the model backends used for tailoring operations.
// The primary backend shells out to a locally installed AI CLI; the Gemini
// API backend can substitute for it without touching the orchestration code.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/mwilhelm/applypilot/internal/cli"
)

// Backend selects which provider implementation New returns.
type Backend string

const (
	// BackendCLI runs a locally installed AI command-line tool.
	BackendCLI Backend = "cli"
	// BackendGemini calls the Gemini API directly.
	BackendGemini Backend = "gemini"
)

// Config holds provider settings.
type Config struct {
	Backend Backend
	// Tool is the CLI binary name for BackendCLI.
	Tool string
	// ExtraArgs are passed to the CLI tool before the prompt is written to stdin.
	ExtraArgs []string
	// Model is the model name for BackendGemini.
	Model string
	// APIKey authenticates BackendGemini.
	APIKey string
}

// DefaultConfig returns the CLI-backed default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendCLI,
		Tool:    "gemini",
		Model:   "gemini-2.5-flash",
	}
}

// CompleteOptions tunes a single completion call.
type CompleteOptions struct {
	// Timeout bounds the call; zero means the provider default.
	Timeout time.Duration
}

// Provider is an abstraction over model backends.
type Provider interface {
	// Name identifies the backend for logs and status reporting.
	Name() string
	// Available reports whether the backend can serve requests right now.
	Available(ctx context.Context) bool
	// Complete sends prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
	// Close releases any resources held by the provider.
	Close() error
}

// New creates a Provider from config. The invoker and finder are only used
// by the CLI backend.
func New(ctx context.Context, config *Config, invoker cli.Invoker, finder ToolFinder) (Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Backend {
	case BackendGemini:
		return NewGeminiProvider(ctx, config)
	case BackendCLI, "":
		return NewCLIProvider(config, invoker, finder), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", config.Backend)
	}
}
