package tailoring

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelToken_SignalOnce(t *testing.T) {
	token := NewCancelToken()
	assert.False(t, token.Cancelled())

	assert.True(t, token.Cancel())
	assert.True(t, token.Cancelled())
	assert.False(t, token.Cancel(), "only the first cancel signals")
}

func TestCancelToken_TerminationCallbackRunsExactlyOnce(t *testing.T) {
	token := NewCancelToken()
	var terminations int32
	token.OnCancel(func() { atomic.AddInt32(&terminations, 1) })

	token.Cancel()
	token.Cancel()
	token.Cancel()

	assert.Equal(t, int32(1), atomic.LoadInt32(&terminations))
}

func TestCancelToken_ConcurrentCancelSignalsOnce(t *testing.T) {
	token := NewCancelToken()
	var terminations, wins int32
	token.OnCancel(func() { atomic.AddInt32(&terminations, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if token.Cancel() {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&wins))
	assert.Equal(t, int32(1), atomic.LoadInt32(&terminations))
}

func TestCancelToken_LateRegistrationFiresImmediately(t *testing.T) {
	token := NewCancelToken()
	token.Cancel()

	ran := false
	token.OnCancel(func() { ran = true })
	assert.True(t, ran, "registering on a signalled token must fire at once")
}

func TestCancelToken_RemovedCallbackDoesNotFire(t *testing.T) {
	token := NewCancelToken()
	ran := false
	remove := token.OnCancel(func() { ran = true })
	remove()

	token.Cancel()
	assert.False(t, ran)
}

func TestRegistry_AddRemovePairing(t *testing.T) {
	reg := NewRegistry()
	id := uuid.New()

	require.True(t, reg.Add(id, NewCancelToken()))
	assert.False(t, reg.Add(id, NewCancelToken()), "a live ID cannot be reused")
	assert.Len(t, reg.Active(), 1)

	reg.Remove(id)
	assert.Empty(t, reg.Active())
	assert.True(t, reg.Add(id, NewCancelToken()), "a removed ID is free again")
}

func TestRegistry_CancelSignalsAndRemoves(t *testing.T) {
	reg := NewRegistry()
	id := uuid.New()
	token := NewCancelToken()
	require.True(t, reg.Add(id, token))

	assert.True(t, reg.Cancel(id))
	assert.True(t, token.Cancelled())
	assert.Empty(t, reg.Active())

	assert.False(t, reg.Cancel(id), "the entry is gone after the first cancel")
}

func TestRegistry_CancelUnknownID(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Cancel(uuid.New()))
}
