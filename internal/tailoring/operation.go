// Package tailoring orchestrates AI tailoring operations end to end: prompt
// construction, model invocation, response parsing and validation, output
// sanitization, bounded retries, progress broadcast, and cancellation by
// operation ID.
package tailoring

import (
	"time"

	"github.com/google/uuid"
)

// Kind names a tailoring operation.
type Kind string

// Operation kinds.
const (
	KindRefine      Kind = "refine_resume"
	KindCoverLetter Kind = "generate_cover_letter"
)

// Status is an operation lifecycle state.
type Status string

// Lifecycle states. An operation moves Started -> Processing and ends in
// exactly one of Completed, Error, or Cancelled.
const (
	StatusIdle       Status = "idle"
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether s ends an operation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// ProgressEvent is broadcast to every subscriber as an operation advances.
// Progress is a coarse milestone, not a fine-grained counter: 0 at start,
// 25 while the model runs, 100 on completion. Terminal error and cancel
// events carry the last milestone reached.
type ProgressEvent struct {
	OperationID uuid.UUID `json:"operation_id"`
	Kind        Kind      `json:"kind"`
	Status      Status    `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProgressSink receives progress events. Publish must not block; slow
// consumers buffer or drop on their own side.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// SinkFunc adapts a plain function to ProgressSink.
type SinkFunc func(event ProgressEvent)

// Publish calls f.
func (f SinkFunc) Publish(event ProgressEvent) { f(event) }
