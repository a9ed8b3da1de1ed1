package cli

import (
	"fmt"
	"time"
)

// NotFoundError represents a binary that could not be located or executed
type NotFoundError struct {
	Name  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("binary %s not found: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("binary %s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a tool that did not exit before the deadline and
// was forcibly terminated
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tool did not exit within %s and was terminated", e.Timeout)
}

// KilledError represents a tool terminated by a signal that did not come
// from our own timeout or cancellation handling
type KilledError struct {
	Detail string
}

func (e *KilledError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tool was killed: %s", e.Detail)
	}
	return "tool was killed by an external signal"
}

// ExitError represents a tool that ran to completion with a non-zero status
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("tool exited with status %d: %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("tool exited with status %d", e.Code)
}
