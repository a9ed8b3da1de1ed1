package llm

import (
	"context"
	"fmt"

	"github.com/mwilhelm/applypilot/internal/cli"
)

// ToolFinder locates an installed CLI tool. *cli.Detector satisfies it.
type ToolFinder interface {
	Detect(ctx context.Context, tool string) (string, bool)
}

// CLIProvider completes prompts by running a locally installed AI tool.
// The prompt travels over stdin so its size is not limited by argv and never
// shows up in process listings.
type CLIProvider struct {
	tool    string
	args    []string
	invoker cli.Invoker
	finder  ToolFinder
}

// NewCLIProvider creates a provider for the configured CLI tool.
func NewCLIProvider(config *Config, invoker cli.Invoker, finder ToolFinder) *CLIProvider {
	tool := config.Tool
	if tool == "" {
		tool = DefaultConfig().Tool
	}
	return &CLIProvider{
		tool:    tool,
		args:    config.ExtraArgs,
		invoker: invoker,
		finder:  finder,
	}
}

// Name identifies the backend.
func (p *CLIProvider) Name() string {
	return "cli:" + p.tool
}

// Available reports whether the tool can currently be found.
func (p *CLIProvider) Available(ctx context.Context) bool {
	_, ok := p.finder.Detect(ctx, p.tool)
	return ok
}

// Complete runs the tool with the prompt on stdin and returns its stdout.
// Failures keep their cli error types so callers can tell a missing binary,
// a timeout, an external kill, and a nonzero exit apart.
func (p *CLIProvider) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	path, ok := p.finder.Detect(ctx, p.tool)
	if !ok {
		return "", &cli.NotFoundError{Name: p.tool}
	}

	result, err := p.invoker.Invoke(ctx, path, p.args, cli.InvokeOptions{
		Input:   prompt,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return "", err
	}
	if result.Stdout == "" {
		return "", fmt.Errorf("%s produced no output", p.tool)
	}
	return result.Stdout, nil
}

// Close is a no-op; the provider holds no resources between calls.
func (p *CLIProvider) Close() error {
	return nil
}
