// Package cli locates and runs external AI command-line tools. Invocations
// feed the prompt over stdin, capture stdio, and are bounded by a
// per-invocation timeout; no exit path leaves a child process behind.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation when the caller does not
// set one.
const DefaultTimeout = 120 * time.Second

// waitDelay releases Wait once the process is killed even if a grandchild
// still holds the stdio pipes; AI CLIs routinely fork helpers.
const waitDelay = 3 * time.Second

// ExecResult holds the captured outcome of one tool invocation.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// InvokeOptions configures one invocation.
type InvokeOptions struct {
	Input   string        // fed to the child's stdin when non-empty
	Timeout time.Duration // zero means DefaultTimeout
	Env     []string      // nil inherits the parent environment
}

// Invoker runs external binaries with captured stdio.
type Invoker interface {
	Invoke(ctx context.Context, path string, args []string, opts InvokeOptions) (*ExecResult, error)
}

// ProcessInvoker is the os/exec-backed Invoker.
type ProcessInvoker struct{}

// NewProcessInvoker creates a ProcessInvoker.
func NewProcessInvoker() *ProcessInvoker {
	return &ProcessInvoker{}
}

// Invoke runs path with args until it exits, the timeout lapses, or ctx is
// cancelled. The returned error discriminates the failure:
//   - *NotFoundError: the binary is missing or not executable
//   - *TimeoutError:  the deadline passed and the child was terminated
//   - *KilledError:   an external signal terminated the child
//   - *ExitError:     the tool ran and exited non-zero (result is populated)
//   - ctx.Err():      the caller cancelled mid-flight
//
// On *ExitError the result carries the captured stdout/stderr so callers can
// surface tool diagnostics.
func (p *ProcessInvoker) Invoke(ctx context.Context, path string, args []string, opts InvokeOptions) (*ExecResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.WaitDelay = waitDelay
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	if opts.Input != "" {
		cmd.Stdin = strings.NewReader(opts.Input)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	result := &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return result, nil
	}

	// The kill that produced runErr may have been our own: caller
	// cancellation wins over the deadline, the deadline over everything else.
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return result, &TimeoutError{Timeout: timeout}
	}

	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) || errors.Is(runErr, fs.ErrPermission) {
		return nil, &NotFoundError{Name: path, Cause: runErr}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		code := exitErr.ExitCode()
		if code == -1 {
			return result, &KilledError{Detail: exitErr.String()}
		}
		result.ExitCode = code
		return result, &ExitError{Code: code, Stderr: strings.TrimSpace(result.Stderr)}
	}

	return nil, runErr
}
