package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mwilhelm/applypilot/internal/db"
	"github.com/mwilhelm/applypilot/internal/tailoring"
	"github.com/mwilhelm/applypilot/internal/types"
)

// OperationResponse acknowledges an accepted operation.
type OperationResponse struct {
	OperationID string `json:"operation_id"`
	Status      string `json:"status"`
}

// OperationStatusResponse is a point-in-time view of one operation.
type OperationStatusResponse struct {
	OperationID string    `json:"operation_id"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CancelResponse reports whether a live operation was cancelled.
type CancelResponse struct {
	OperationID string `json:"operation_id"`
	Cancelled   bool   `json:"cancelled"`
}

// handleRefine starts a refine-resume operation and returns immediately.
// Progress arrives over /api/events; the outcome lands in history.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req types.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New()
	log.Printf("Starting refine operation %s", id)

	go s.runRefine(id, req)

	s.jsonResponse(w, http.StatusAccepted, OperationResponse{
		OperationID: id.String(),
		Status:      string(tailoring.StatusStarted),
	})
}

// handleCoverLetter starts a cover letter operation and returns immediately.
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req types.CoverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New()
	log.Printf("Starting cover letter operation %s", id)

	go s.runCoverLetter(id, req)

	s.jsonResponse(w, http.StatusAccepted, OperationResponse{
		OperationID: id.String(),
		Status:      string(tailoring.StatusStarted),
	})
}

func (s *Server) runRefine(id uuid.UUID, req types.RefineRequest) {
	ctx := context.Background()
	outcome, err := s.orch.Refine(ctx, id, req)

	gen := &db.Generation{
		ID:      id,
		Kind:    string(tailoring.KindRefine),
		JobText: req.JobText,
	}
	if err != nil {
		fillFailure(gen, err)
	} else {
		gen.Status = db.GenerationCompleted
		gen.Attempts = outcome.Attempts
		gen.ElapsedMS = outcome.Elapsed.Milliseconds()
		gen.Result, _ = json.Marshal(outcome.Resume)
	}
	s.record(ctx, gen)
}

func (s *Server) runCoverLetter(id uuid.UUID, req types.CoverLetterRequest) {
	ctx := context.Background()
	outcome, err := s.orch.CoverLetter(ctx, id, req)

	gen := &db.Generation{
		ID:      id,
		Kind:    string(tailoring.KindCoverLetter),
		Company: req.CompanyName,
		JobText: req.JobText,
	}
	if err != nil {
		fillFailure(gen, err)
	} else {
		gen.Status = db.GenerationCompleted
		gen.Attempts = outcome.Attempts
		gen.ElapsedMS = outcome.Elapsed.Milliseconds()
		gen.Result, _ = json.Marshal(outcome.Letter)
	}
	s.record(ctx, gen)
}

// fillFailure maps an operation failure onto a history row.
func fillFailure(gen *db.Generation, err error) {
	gen.Status = db.GenerationError
	gen.ErrorMessage = err.Error()
	gen.Attempts = 1

	var opErr *tailoring.OperationError
	if errors.As(err, &opErr) {
		gen.ErrorKind = string(opErr.Kind)
		gen.ErrorMessage = opErr.Message
		if opErr.Kind == tailoring.ErrCancelled {
			gen.Status = db.GenerationCancelled
		}
	}
}

// record saves a generation row. History is best effort; a storage hiccup
// must not turn a finished operation into a failure.
func (s *Server) record(ctx context.Context, gen *db.Generation) {
	if s.db == nil {
		return
	}
	if err := s.db.SaveGeneration(ctx, gen); err != nil {
		log.Printf("Failed to record generation %s: %v", gen.ID, err)
	}
}

// handleCancelOperation signals the operation's cancellation token.
func (s *Server) handleCancelOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.operationID(w, r)
	if !ok {
		return
	}

	cancelled := s.orch.Cancel(id)
	if cancelled {
		log.Printf("Cancelled operation %s", id)
	}
	s.jsonResponse(w, http.StatusOK, CancelResponse{
		OperationID: id.String(),
		Cancelled:   cancelled,
	})
}

// handleGetOperation returns the operation's latest progress snapshot,
// falling back to the history row once the daemon has evicted the snapshot.
func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.operationID(w, r)
	if !ok {
		return
	}

	if event, found := s.snapshots.Get(id); found {
		s.jsonResponse(w, http.StatusOK, OperationStatusResponse{
			OperationID: event.OperationID.String(),
			Kind:        string(event.Kind),
			Status:      string(event.Status),
			Progress:    event.Progress,
			Message:     event.Message,
			Timestamp:   event.Timestamp,
		})
		return
	}

	if s.db != nil {
		gen, err := s.db.GetGeneration(r.Context(), id)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
		if gen != nil {
			progress := 0
			if gen.Succeeded() {
				progress = 100
			}
			s.jsonResponse(w, http.StatusOK, OperationStatusResponse{
				OperationID: gen.ID.String(),
				Kind:        gen.Kind,
				Status:      gen.Status,
				Progress:    progress,
				Message:     gen.ErrorMessage,
				Timestamp:   gen.CreatedAt,
			})
			return
		}
	}

	notFound := &ErrNotFound{What: "operation", ID: id.String()}
	s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
}

// handleEvents streams every operation's progress events over SSE until the
// client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	// Confirm the stream before the first event shows up.
	if err := sse.WriteComment("connected"); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent("progress", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
				return
			}
		}
	}
}

// operationID parses the {id} path value, writing the error response itself.
func (s *Server) operationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Operation ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid operation ID format")
		return uuid.Nil, false
	}
	return id, true
}
