package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwilhelm/applypilot/internal/cli"
)

type stubFinder struct {
	path  string
	found bool
}

func (s *stubFinder) Detect(context.Context, string) (string, bool) {
	return s.path, s.found
}

type stubInvoker struct {
	result   *cli.ExecResult
	err      error
	lastPath string
	lastArgs []string
	lastOpts cli.InvokeOptions
}

func (s *stubInvoker) Invoke(_ context.Context, path string, args []string, opts cli.InvokeOptions) (*cli.ExecResult, error) {
	s.lastPath = path
	s.lastArgs = args
	s.lastOpts = opts
	return s.result, s.err
}

func TestCLIProvider_CompleteSendsPromptOnStdin(t *testing.T) {
	inv := &stubInvoker{result: &cli.ExecResult{ExitCode: 0, Stdout: `{"ok":true}`}}
	p := NewCLIProvider(&Config{Tool: "gemini", ExtraArgs: []string{"--sandbox"}}, inv, &stubFinder{path: "/usr/local/bin/gemini", found: true})

	out, err := p.Complete(context.Background(), "tailor this resume", CompleteOptions{Timeout: 45 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "/usr/local/bin/gemini", inv.lastPath)
	assert.Equal(t, []string{"--sandbox"}, inv.lastArgs)
	assert.Equal(t, "tailor this resume", inv.lastOpts.Input)
	assert.Equal(t, 45*time.Second, inv.lastOpts.Timeout)
}

func TestCLIProvider_CompleteToolMissing(t *testing.T) {
	inv := &stubInvoker{}
	p := NewCLIProvider(&Config{Tool: "gemini"}, inv, &stubFinder{})

	_, err := p.Complete(context.Background(), "prompt", CompleteOptions{})

	var notFound *cli.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "gemini", notFound.Name)
	assert.Empty(t, inv.lastPath, "nothing must be executed when the tool is absent")
}

func TestCLIProvider_CompletePreservesInvokerErrorTypes(t *testing.T) {
	inv := &stubInvoker{err: &cli.TimeoutError{Timeout: time.Second}}
	p := NewCLIProvider(&Config{Tool: "gemini"}, inv, &stubFinder{path: "/usr/bin/gemini", found: true})

	_, err := p.Complete(context.Background(), "prompt", CompleteOptions{})

	var timeout *cli.TimeoutError
	require.ErrorAs(t, err, &timeout)
}

func TestCLIProvider_CompleteEmptyOutputIsAnError(t *testing.T) {
	inv := &stubInvoker{result: &cli.ExecResult{ExitCode: 0}}
	p := NewCLIProvider(&Config{Tool: "gemini"}, inv, &stubFinder{path: "/usr/bin/gemini", found: true})

	_, err := p.Complete(context.Background(), "prompt", CompleteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}

func TestCLIProvider_Available(t *testing.T) {
	p := NewCLIProvider(&Config{Tool: "gemini"}, &stubInvoker{}, &stubFinder{path: "/usr/bin/gemini", found: true})
	assert.True(t, p.Available(context.Background()))

	p = NewCLIProvider(&Config{Tool: "gemini"}, &stubInvoker{}, &stubFinder{})
	assert.False(t, p.Available(context.Background()))
}

func TestCLIProvider_NameAndDefaults(t *testing.T) {
	p := NewCLIProvider(&Config{}, &stubInvoker{}, &stubFinder{})
	assert.Equal(t, "cli:gemini", p.Name())
	assert.NoError(t, p.Close())
}

func TestNew_SelectsBackend(t *testing.T) {
	provider, err := New(context.Background(), &Config{Backend: BackendCLI, Tool: "gemini"}, &stubInvoker{}, &stubFinder{})
	require.NoError(t, err)
	assert.IsType(t, &CLIProvider{}, provider)

	provider, err = New(context.Background(), nil, &stubInvoker{}, &stubFinder{})
	require.NoError(t, err)
	assert.IsType(t, &CLIProvider{}, provider)

	_, err = New(context.Background(), &Config{Backend: "openai"}, &stubInvoker{}, &stubFinder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm backend")
}

func TestNewGeminiProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), &Config{Backend: BackendGemini})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
