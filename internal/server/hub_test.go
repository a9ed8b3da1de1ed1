package server

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwilhelm/applypilot/internal/tailoring"
)

func progressEvent(id uuid.UUID, status tailoring.Status, progress int) tailoring.ProgressEvent {
	return tailoring.ProgressEvent{
		OperationID: id,
		Kind:        tailoring.KindRefine,
		Status:      status,
		Progress:    progress,
	}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub()
	ch1, unsub1 := hub.Subscribe()
	ch2, unsub2 := hub.Subscribe()
	defer unsub1()
	defer unsub2()

	event := progressEvent(uuid.New(), tailoring.StatusStarted, 0)
	hub.Publish(event)

	assert.Equal(t, event, <-ch1)
	assert.Equal(t, event, <-ch2)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	_, unsub := hub.Subscribe()
	defer unsub()

	// Twice the buffer depth; the excess is dropped, not blocked on.
	for i := 0; i < 2*subscriberBuffer; i++ {
		hub.Publish(progressEvent(uuid.New(), tailoring.StatusProcessing, 25))
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless.
	unsub()
}

func TestHubCloseDropsSubscribers(t *testing.T) {
	hub := NewHub()
	ch, _ := hub.Subscribe()
	hub.Close()

	_, open := <-ch
	assert.False(t, open)

	// Publishing and subscribing after Close are no-ops.
	hub.Publish(progressEvent(uuid.New(), tailoring.StatusStarted, 0))
	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestSnapshotStoreKeepsLatestEvent(t *testing.T) {
	store := newSnapshotStore()
	id := uuid.New()

	store.Publish(progressEvent(id, tailoring.StatusStarted, 0))
	store.Publish(progressEvent(id, tailoring.StatusProcessing, 25))
	store.Publish(progressEvent(id, tailoring.StatusCompleted, 100))

	event, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, tailoring.StatusCompleted, event.Status)
	assert.Equal(t, 100, event.Progress)

	_, ok = store.Get(uuid.New())
	assert.False(t, ok)
}

func TestSnapshotStoreEvictsOldestOperation(t *testing.T) {
	store := newSnapshotStore()

	first := uuid.New()
	store.Publish(progressEvent(first, tailoring.StatusCompleted, 100))
	for i := 0; i < maxSnapshots; i++ {
		store.Publish(progressEvent(uuid.New(), tailoring.StatusCompleted, 100))
	}

	_, ok := store.Get(first)
	assert.False(t, ok, fmt.Sprintf("oldest operation should be evicted after %d newer ones", maxSnapshots))
}
