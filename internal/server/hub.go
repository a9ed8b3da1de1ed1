package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mwilhelm/applypilot/internal/tailoring"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing events; the orchestrator never blocks.
const subscriberBuffer = 64

// Hub fans operation progress events out to every subscribed SSE stream.
// It implements tailoring.ProgressSink.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan tailoring.ProgressEvent
	nextID int
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan tailoring.ProgressEvent)}
}

// Publish delivers event to every subscriber without blocking. A full
// subscriber channel drops the event for that subscriber only.
func (h *Hub) Publish(event tailoring.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. Unsubscribing closes the channel.
func (h *Hub) Subscribe() (<-chan tailoring.ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan tailoring.ProgressEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Close drops all subscribers, closing their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// maxSnapshots bounds the retained per-operation states. The daemon serves a
// single user; this is far more history than any UI session accumulates.
const maxSnapshots = 512

// snapshotStore keeps the latest progress event per operation so the status
// endpoint can answer without a subscription. It implements
// tailoring.ProgressSink.
type snapshotStore struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]tailoring.ProgressEvent
	order []uuid.UUID
}

func newSnapshotStore() *snapshotStore {
	return &snapshotStore{byID: make(map[uuid.UUID]tailoring.ProgressEvent)}
}

// Publish records event as the operation's current state, evicting the
// oldest operation once the cap is reached.
func (s *snapshotStore) Publish(event tailoring.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.byID[event.OperationID]; !seen {
		s.order = append(s.order, event.OperationID)
		if len(s.order) > maxSnapshots {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.byID, oldest)
		}
	}
	s.byID[event.OperationID] = event
}

// Get returns the latest event recorded for id.
func (s *snapshotStore) Get(id uuid.UUID) (tailoring.ProgressEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.byID[id]
	return event, ok
}
