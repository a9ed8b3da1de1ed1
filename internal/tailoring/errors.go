package tailoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwilhelm/applypilot/internal/cli"
	"github.com/mwilhelm/applypilot/internal/parsing"
	"github.com/mwilhelm/applypilot/internal/schemas"
)

// ErrorKind classifies operation failures for callers and UI surfaces.
type ErrorKind string

// Failure kinds. Only ErrValidationFailed is retryable; everything else is
// terminal for the operation because it is not expected to self-resolve
// within the same call.
const (
	ErrCLINotAvailable  ErrorKind = "CLI_NOT_AVAILABLE"
	ErrTimeout          ErrorKind = "TIMEOUT"
	ErrProcessKilled    ErrorKind = "PROCESS_KILLED"
	ErrCLIError         ErrorKind = "CLI_ERROR"
	ErrParseFailed      ErrorKind = "PARSE_FAILED"
	ErrValidationFailed ErrorKind = "VALIDATION_FAILED"
	ErrCancelled        ErrorKind = "CANCELLED"
	ErrExecutionFailed  ErrorKind = "EXECUTION_FAILED"
)

// OperationError is the typed failure surfaced for a tailoring operation.
type OperationError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Cause   error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt with the same prompt may succeed.
func (e *OperationError) Retryable() bool {
	return e.Kind == ErrValidationFailed
}

// classify maps lower-layer failures onto the operation error taxonomy.
func classify(err error) *OperationError {
	var (
		opErr    *OperationError
		notFound *cli.NotFoundError
		timeout  *cli.TimeoutError
		killed   *cli.KilledError
		exit     *cli.ExitError
		parse    *parsing.ParseError
		invalid  *schemas.ValidationError
	)
	switch {
	case errors.As(err, &opErr):
		return opErr
	case errors.Is(err, context.Canceled):
		return &OperationError{Kind: ErrCancelled, Message: "operation cancelled", Cause: err}
	case errors.As(err, &notFound):
		return &OperationError{Kind: ErrCLINotAvailable, Message: "AI tool not found", Detail: notFound.Name, Cause: err}
	case errors.As(err, &timeout):
		return &OperationError{Kind: ErrTimeout, Message: "AI tool did not finish in time", Detail: timeout.Timeout.String(), Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &OperationError{Kind: ErrTimeout, Message: "AI tool did not finish in time", Cause: err}
	case errors.As(err, &killed):
		return &OperationError{Kind: ErrProcessKilled, Message: "AI tool process was terminated", Detail: killed.Detail, Cause: err}
	case errors.As(err, &exit):
		return &OperationError{Kind: ErrCLIError, Message: fmt.Sprintf("AI tool exited with status %d", exit.Code), Detail: exit.Stderr, Cause: err}
	case errors.As(err, &parse):
		return &OperationError{Kind: ErrParseFailed, Message: "AI tool output is not a JSON object", Cause: err}
	case errors.As(err, &invalid):
		return &OperationError{Kind: ErrValidationFailed, Message: "AI response does not match the expected structure", Detail: fieldSummary(invalid), Cause: err}
	default:
		return &OperationError{Kind: ErrExecutionFailed, Message: "operation failed", Detail: err.Error(), Cause: err}
	}
}

// fieldSummary flattens a validation error into one line for event messages.
func fieldSummary(verr *schemas.ValidationError) string {
	parts := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}
