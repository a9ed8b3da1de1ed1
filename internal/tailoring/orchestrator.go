package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mwilhelm/applypilot/internal/llm"
	"github.com/mwilhelm/applypilot/internal/parsing"
	"github.com/mwilhelm/applypilot/internal/prompts"
	"github.com/mwilhelm/applypilot/internal/sanitize"
	"github.com/mwilhelm/applypilot/internal/schemas"
	"github.com/mwilhelm/applypilot/internal/types"
)

const defaultAttemptTimeout = 120 * time.Second

// Options configures an Orchestrator.
type Options struct {
	// MaxRetries is the number of extra attempts allowed after a validation
	// failure. Zero means a single attempt. Only validation failures are
	// retried; every other failure is terminal.
	MaxRetries int
	// AttemptTimeout bounds each model invocation. A retry gets a fresh budget.
	AttemptTimeout time.Duration
	// BaseOptions supplies the settings-derived prompt option defaults.
	// Per-request overrides are applied on top, field by field. Nil means
	// the built-in defaults.
	BaseOptions func() types.PromptOptions
	// Sanitize controls cleanup of the validated result's string fields.
	Sanitize sanitize.Options
	// Sinks receive every progress event.
	Sinks []ProgressSink
}

// Orchestrator drives tailoring operations through their lifecycle and owns
// the active-operation registry.
type Orchestrator struct {
	provider llm.Provider
	registry *Registry
	opts     Options
}

// New creates an Orchestrator on top of provider.
func New(provider llm.Provider, opts Options) *Orchestrator {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = defaultAttemptTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseOptions == nil {
		opts.BaseOptions = types.DefaultPromptOptions
	}
	return &Orchestrator{
		provider: provider,
		registry: NewRegistry(),
		opts:     opts,
	}
}

// Available reports whether the configured AI backend can serve operations.
func (o *Orchestrator) Available(ctx context.Context) bool {
	return o.provider.Available(ctx)
}

// Cancel signals the operation registered under id. It reports whether a
// live operation was found; an operation that already reached a terminal
// state is gone from the registry, so cancelling it returns false.
func (o *Orchestrator) Cancel(id uuid.UUID) bool {
	return o.registry.Cancel(id)
}

// Active returns the IDs of operations currently in flight.
func (o *Orchestrator) Active() []uuid.UUID {
	return o.registry.Active()
}

// RefineOutcome is the result of a completed refine operation.
type RefineOutcome struct {
	Resume   *types.RefinedResume
	Attempts int
	Elapsed  time.Duration
}

// CoverLetterOutcome is the result of a completed cover letter operation.
type CoverLetterOutcome struct {
	Letter   *types.CoverLetter
	Attempts int
	Elapsed  time.Duration
}

// Refine tailors req.Resume to req.JobText. Progress events are broadcast
// under id; the call blocks until the operation reaches a terminal state.
// Operation failures come back as *OperationError.
func (o *Orchestrator) Refine(ctx context.Context, id uuid.UUID, req types.RefineRequest) (*RefineOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid refine request: %w", err)
	}
	opts := req.Overrides.Apply(o.opts.BaseOptions())

	var refined types.RefinedResume
	stats, err := o.execute(ctx, job{
		id:     id,
		kind:   KindRefine,
		schema: schemas.KindRefinedResume,
		build: func() (string, error) {
			system, user, err := prompts.BuildRefinePrompt(req.Resume, req.JobText, opts)
			if err != nil {
				return "", err
			}
			return prompts.Combine(system, user), nil
		},
		limits: func(clean []byte) error {
			return checkHighlightLimit(clean, opts.MaxHighlightsPerJob)
		},
		accept: func(clean []byte) error {
			return json.Unmarshal(clean, &refined)
		},
	})
	if err != nil {
		return nil, err
	}
	return &RefineOutcome{Resume: &refined, Attempts: stats.attempts, Elapsed: stats.elapsed}, nil
}

// CoverLetter generates a cover letter for req. Progress events are broadcast
// under id; the call blocks until the operation reaches a terminal state.
func (o *Orchestrator) CoverLetter(ctx context.Context, id uuid.UUID, req types.CoverLetterRequest) (*CoverLetterOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cover letter request: %w", err)
	}
	opts := req.Overrides.Apply(o.opts.BaseOptions())

	var letter types.CoverLetter
	stats, err := o.execute(ctx, job{
		id:     id,
		kind:   KindCoverLetter,
		schema: schemas.KindCoverLetter,
		build: func() (string, error) {
			system, user, err := prompts.BuildCoverLetterPrompt(req.Resume, req.JobText, req.CompanyName, req.CompanyInfo, opts)
			if err != nil {
				return "", err
			}
			return prompts.Combine(system, user), nil
		},
		limits: func(clean []byte) error {
			return checkParagraphLimit(clean, opts.MaxBodyParagraphs)
		},
		accept: func(clean []byte) error {
			return json.Unmarshal(clean, &letter)
		},
	})
	if err != nil {
		return nil, err
	}
	return &CoverLetterOutcome{Letter: &letter, Attempts: stats.attempts, Elapsed: stats.elapsed}, nil
}

// job bundles the per-kind pieces of an operation so execute stays generic.
type job struct {
	id     uuid.UUID
	kind   Kind
	schema schemas.Kind
	build  func() (string, error)
	// limits enforces the configured list bounds the schema's fixed ceilings
	// cannot express. A *schemas.ValidationError return is retryable.
	limits func(clean []byte) error
	accept func(clean []byte) error
}

type runStats struct {
	attempts int
	elapsed  time.Duration
}

// execute runs the operation state machine. Event order for a given ID is
// fixed: started(0), then processing(25) once the prompt is built, then a
// single terminal event. The registry entry is removed on every exit path.
func (o *Orchestrator) execute(ctx context.Context, j job) (runStats, error) {
	start := time.Now()
	var stats runStats

	token := NewCancelToken()
	if !o.registry.Add(j.id, token) {
		return stats, &OperationError{Kind: ErrExecutionFailed, Message: "operation ID already in use", Detail: j.id.String()}
	}
	defer o.registry.Remove(j.id)

	o.emit(j, StatusStarted, 0, "Operation started")

	if !o.provider.Available(ctx) {
		opErr := &OperationError{Kind: ErrCLINotAvailable, Message: "no AI tool available", Detail: o.provider.Name()}
		o.emit(j, StatusError, 0, opErr.Message)
		return stats, opErr
	}

	prompt, err := j.build()
	if err != nil {
		opErr := classify(err)
		o.emit(j, StatusError, 0, opErr.Message)
		return stats, opErr
	}

	o.emit(j, StatusProcessing, 25, "Waiting for the AI tool")

	maxAttempts := o.opts.MaxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stats.attempts = attempt

		// Cancellation may arrive between attempts or race a long-running
		// child process, so the token is checked on both sides of the call
		// and the signal wins over whatever the call returned.
		if token.Cancelled() {
			o.emit(j, StatusCancelled, 25, "Operation cancelled")
			return stats, cancelledErr()
		}

		raw, callErr := o.completeAttempt(ctx, token, prompt)

		if token.Cancelled() {
			o.emit(j, StatusCancelled, 25, "Operation cancelled")
			return stats, cancelledErr()
		}
		if callErr != nil {
			opErr := classify(callErr)
			o.emit(j, StatusError, 25, opErr.Message)
			return stats, opErr
		}

		clean, procErr := o.processOutput(raw, j.schema)
		if procErr == nil && j.limits != nil {
			procErr = j.limits(clean)
		}
		if procErr == nil {
			if err := j.accept(clean); err != nil {
				opErr := classify(err)
				o.emit(j, StatusError, 25, opErr.Message)
				return stats, opErr
			}
			stats.elapsed = time.Since(start)
			o.emit(j, StatusCompleted, 100, "Operation completed")
			log.Printf("[tailoring] %s %s completed in %v after %d attempt(s)", j.kind, j.id, stats.elapsed.Round(time.Millisecond), attempt)
			return stats, nil
		}

		opErr := classify(procErr)
		if !opErr.Retryable() || attempt == maxAttempts {
			o.emit(j, StatusError, 25, opErr.Message)
			return stats, opErr
		}
		log.Printf("[tailoring] %s %s attempt %d/%d failed validation, retrying", j.kind, j.id, attempt, maxAttempts)
	}

	// The loop always returns; this is unreachable.
	return stats, &OperationError{Kind: ErrExecutionFailed, Message: "attempt loop ended without a result"}
}

// completeAttempt runs one model invocation under its own timeout, wiring
// the cancel token to the call context so a cancel kills the child process.
func (o *Orchestrator) completeAttempt(ctx context.Context, token *CancelToken, prompt string) (string, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	unregister := token.OnCancel(cancel)
	defer unregister()

	return o.provider.Complete(attemptCtx, prompt, llm.CompleteOptions{Timeout: o.opts.AttemptTimeout})
}

// processOutput reduces raw model output to a sanitized JSON document
// conforming to the schema for kind: extract the first JSON object, validate
// it, then clean every string field of the validated result.
func (o *Orchestrator) processOutput(raw string, kind schemas.Kind) ([]byte, error) {
	extracted, err := parsing.ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate([]byte(extracted), kind); err != nil {
		return nil, err
	}
	return sanitize.JSON([]byte(extracted), o.opts.Sanitize)
}

func (o *Orchestrator) emit(j job, status Status, progress int, message string) {
	event := ProgressEvent{
		OperationID: j.id,
		Kind:        j.kind,
		Status:      status,
		Progress:    progress,
		Message:     message,
		Timestamp:   time.Now(),
	}
	for _, sink := range o.opts.Sinks {
		sink.Publish(event)
	}
}

func cancelledErr() *OperationError {
	return &OperationError{Kind: ErrCancelled, Message: "operation cancelled"}
}
