package tailoring

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// CancelToken carries the cooperative cancellation signal for one operation.
// The orchestrator polls Cancelled at safe points; termination callbacks let
// an in-flight child process be killed the moment the signal arrives.
type CancelToken struct {
	flag      atomic.Bool
	mu        sync.Mutex
	callbacks map[int]func()
	nextID    int
}

// NewCancelToken creates an unsignalled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{callbacks: make(map[int]func())}
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t.flag.Load()
}

// Cancel signals the token. Only the first call runs the registered
// termination callbacks; it reports whether this call was the signalling one.
func (t *CancelToken) Cancel() bool {
	if !t.flag.CompareAndSwap(false, true) {
		return false
	}

	t.mu.Lock()
	fns := make([]func(), 0, len(t.callbacks))
	for _, fn := range t.callbacks {
		fns = append(fns, fn)
	}
	t.callbacks = nil
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return true
}

// OnCancel registers fn to run when the token is signalled and returns a
// function that unregisters it. If the token is already signalled, fn runs
// immediately.
func (t *CancelToken) OnCancel(fn func()) (remove func()) {
	t.mu.Lock()
	if t.flag.Load() {
		t.mu.Unlock()
		fn()
		return func() {}
	}
	id := t.nextID
	t.nextID++
	if t.callbacks == nil {
		t.callbacks = make(map[int]func())
	}
	t.callbacks[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.callbacks, id)
		t.mu.Unlock()
	}
}

// Registry tracks in-flight operations so they can be cancelled by ID.
// Insertion and removal are paired on every exit path; a finished operation
// leaves no entry behind.
type Registry struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*CancelToken
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[uuid.UUID]*CancelToken)}
}

// Add registers token under id. It reports false when id is already live.
func (r *Registry) Add(id uuid.UUID, token *CancelToken) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[id]; exists {
		return false
	}
	r.tokens[id] = token
	return true
}

// Remove drops id from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
}

// Cancel signals the token registered under id and removes the entry. It
// reports whether a live operation was found; cancelling an operation that
// already finished returns false.
func (r *Registry) Cancel(id uuid.UUID) bool {
	r.mu.Lock()
	token, ok := r.tokens[id]
	if ok {
		delete(r.tokens, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	token.Cancel()
	return true
}

// Active returns the IDs of operations currently in flight.
func (r *Registry) Active() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.tokens))
	for id := range r.tokens {
		ids = append(ids, id)
	}
	return ids
}
