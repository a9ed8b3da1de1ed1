package cli

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireSh skips tests that drive a real /bin/sh.
func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestInvoke_CapturesStdoutAndStderr(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, InvokeOptions{})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestInvoke_NonZeroExit(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo partial; echo boom >&2; exit 3"}, InvokeOptions{})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "boom", exitErr.Stderr)

	// Output produced before the failure is still available.
	require.NotNil(t, result)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "partial\n", result.Stdout)
}

func TestInvoke_StdinPassedToChild(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "cat"}, InvokeOptions{
		Input: "hello from stdin",
	})

	require.NoError(t, err)
	assert.Equal(t, "hello from stdin", result.Stdout)
}

func TestInvoke_EnvOverride(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", `printf '%s' "$DETECT_PROBE"`}, InvokeOptions{
		Env: append(os.Environ(), "DETECT_PROBE=live"),
	})

	require.NoError(t, err)
	assert.Equal(t, "live", result.Stdout)
}

func TestInvoke_Timeout(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	start := time.Now()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "sleep 30"}, InvokeOptions{
		Timeout: 100 * time.Millisecond,
	})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 100*time.Millisecond, timeoutErr.Timeout)
	require.NotNil(t, result)
	assert.Less(t, time.Since(start), 10*time.Second, "child must be killed, not waited on")
}

func TestInvoke_ParentCancellation(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	inv := NewProcessInvoker()
	start := time.Now()
	_, err := inv.Invoke(ctx, "sh", []string{"-c", "sleep 30"}, InvokeOptions{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestInvoke_BinaryNotFound(t *testing.T) {
	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "/definitely/not/a/real/binary-for-tests", nil, InvokeOptions{})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Nil(t, result)
}

func TestInvoke_KilledBySignal(t *testing.T) {
	requireSh(t)

	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "kill -KILL $$"}, InvokeOptions{})

	var killed *KilledError
	require.ErrorAs(t, err, &killed)
	require.NotNil(t, result)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvoke_DefaultTimeoutApplied(t *testing.T) {
	requireSh(t)

	// A zero Timeout means the default, not "no deadline"; a quick command
	// must still finish normally under it.
	inv := NewProcessInvoker()
	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo ok"}, InvokeOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok\n", result.Stdout)
}
