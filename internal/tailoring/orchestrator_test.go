package tailoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwilhelm/applypilot/internal/cli"
	"github.com/mwilhelm/applypilot/internal/llm"
	"github.com/mwilhelm/applypilot/internal/types"
)

const validRefinedJSON = `{
  "personalInfo": {"name": "Ada Lovelace", "email": "ada@example.com", "summary": "Compiler engineer with a decade of parser work.​"},
  "workExperience": [
    {"company": "Analytical Engines Ltd", "position": "Lead Engineer", "startDate": "2019-03", "highlights": ["Shipped the differencing pipeline"]}
  ],
  "skills": ["Go", "Distributed systems"]
}`

const invalidRefinedJSON = `{"personalInfo": {"name": "Ada Lovelace"}}`

const validLetterJSON = `{
  "companyName": "Initech",
  "opening": "Dear Hiring Manager,",
  "bodyParagraphs": ["I am excited to apply for the platform role."],
  "closing": "Sincerely,",
  "signature": "Ada Lovelace"
}`

type fakeResponse struct {
	out string
	err error
}

// fakeProvider serves canned responses in order; the last one repeats. With
// blockOnCtx set, Complete parks until its context is cancelled, signalling
// started on entry so tests can cancel mid-flight deterministically.
type fakeProvider struct {
	mu         sync.Mutex
	responses  []fakeResponse
	calls      int
	prompts    []string
	available  bool
	blockOnCtx bool
	started    chan struct{}
	startOnce  sync.Once
}

func newFakeProvider(responses ...fakeResponse) *fakeProvider {
	return &fakeProvider{responses: responses, available: true, started: make(chan struct{})}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Available(context.Context) bool { return p.available }

func (p *fakeProvider) Close() error { return nil }

func (p *fakeProvider) Complete(ctx context.Context, prompt string, _ llm.CompleteOptions) (string, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	p.startOnce.Do(func() { close(p.started) })

	if p.blockOnCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}

	idx := call - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	resp := p.responses[idx]
	return resp.out, resp.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return ""
	}
	return p.prompts[len(p.prompts)-1]
}

// eventCollector records every published event.
type eventCollector struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (c *eventCollector) Publish(event ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *eventCollector) statuses() []Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Status, len(c.events))
	for i, e := range c.events {
		out[i] = e.Status
	}
	return out
}

func (c *eventCollector) snapshot() []ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ProgressEvent(nil), c.events...)
}

func refineRequest() types.RefineRequest {
	return types.RefineRequest{
		Resume: types.Resume{
			PersonalInfo: types.PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
			WorkExperience: []types.WorkExperience{
				{Company: "Analytical Engines Ltd", Position: "Engineer", StartDate: "2019-03", Highlights: []string{"Built things"}},
			},
			Skills: []string{"Go"},
		},
		JobText: "We are hiring a senior Go engineer to build resilient distributed data pipelines and internal tooling.",
	}
}

func letterRequest() types.CoverLetterRequest {
	return types.CoverLetterRequest{
		Resume:      refineRequest().Resume,
		JobText:     refineRequest().JobText,
		CompanyName: "Initech",
	}
}

func TestRefine_HappyPathWithFencedOutput(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: "Sure, here is the tailored resume:\n```json\n" + validRefinedJSON + "\n```\nLet me know if you need changes."})
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	id := uuid.New()
	outcome, err := orch.Refine(context.Background(), id, refineRequest())

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, "Ada Lovelace", outcome.Resume.PersonalInfo.Name)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Greater(t, outcome.Elapsed, time.Duration(0))

	// The zero-width character planted in the summary must be gone.
	assert.Equal(t, "Compiler engineer with a decade of parser work.", outcome.Resume.PersonalInfo.Summary)

	assert.Equal(t, []Status{StatusStarted, StatusProcessing, StatusCompleted}, collector.statuses())
	events := collector.snapshot()
	assert.Equal(t, []int{0, 25, 100}, []int{events[0].Progress, events[1].Progress, events[2].Progress})
	for _, e := range events {
		assert.Equal(t, id, e.OperationID)
		assert.Equal(t, KindRefine, e.Kind)
	}
}

func TestRefine_ProgressNeverDecreases(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())
	require.NoError(t, err)

	events := collector.snapshot()
	require.NotEmpty(t, events)
	last := -1
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Progress, last)
		last = e.Progress
	}
	assert.Equal(t, 100, events[len(events)-1].Progress)
	assert.Equal(t, StatusCompleted, events[len(events)-1].Status)
}

func TestRefine_BroadcastsToEverySink(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	first := &eventCollector{}
	second := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{first, second}})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())
	require.NoError(t, err)

	assert.Equal(t, first.statuses(), second.statuses())
	assert.Len(t, first.statuses(), 3)
}

func TestRefine_ValidationFailureUsesEveryAttempt(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: invalidRefinedJSON})
	collector := &eventCollector{}
	orch := New(provider, Options{MaxRetries: 2, Sinks: []ProgressSink{collector}})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrValidationFailed, opErr.Kind)
	assert.Equal(t, 3, provider.callCount(), "maxRetries=2 means exactly three attempts")

	// Retries must not replay progress milestones.
	assert.Equal(t, []Status{StatusStarted, StatusProcessing, StatusError}, collector.statuses())
}

func TestRefine_ValidationFailureThenSuccess(t *testing.T) {
	provider := newFakeProvider(
		fakeResponse{out: invalidRefinedJSON},
		fakeResponse{out: validRefinedJSON},
	)
	orch := New(provider, Options{MaxRetries: 1})

	outcome, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, 2, provider.callCount())
}

func TestRefine_TimeoutIsNotRetried(t *testing.T) {
	provider := newFakeProvider(fakeResponse{err: &cli.TimeoutError{Timeout: time.Second}})
	collector := &eventCollector{}
	orch := New(provider, Options{MaxRetries: 3, Sinks: []ProgressSink{collector}})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrTimeout, opErr.Kind)
	assert.Equal(t, 1, provider.callCount(), "timeouts are terminal, never retried")
	assert.Equal(t, []Status{StatusStarted, StatusProcessing, StatusError}, collector.statuses())
}

func TestRefine_CLIExitFailureCarriesStderr(t *testing.T) {
	provider := newFakeProvider(fakeResponse{err: &cli.ExitError{Code: 2, Stderr: "quota exceeded"}})
	orch := New(provider, Options{MaxRetries: 3})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrCLIError, opErr.Kind)
	assert.Equal(t, "quota exceeded", opErr.Detail)
	assert.Equal(t, 1, provider.callCount())
}

func TestRefine_NonJSONOutputFailsParse(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: "I am sorry, I cannot help with that request."})
	orch := New(provider, Options{MaxRetries: 2})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrParseFailed, opErr.Kind)
	assert.Equal(t, 1, provider.callCount(), "parse failures are terminal, never retried")
}

func TestRefine_UnavailableProviderShortCircuits(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	provider.available = false
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	_, err := orch.Refine(context.Background(), uuid.New(), refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrCLINotAvailable, opErr.Kind)
	assert.Equal(t, 0, provider.callCount(), "no invocation may happen without an available tool")
	assert.Equal(t, []Status{StatusStarted, StatusError}, collector.statuses())
}

func TestRefine_InvalidRequestRejectedBeforeStart(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	req := refineRequest()
	req.JobText = "too short"
	_, err := orch.Refine(context.Background(), uuid.New(), req)

	require.Error(t, err)
	assert.Equal(t, 0, provider.callCount())
	assert.Empty(t, collector.statuses(), "a rejected request must not produce events")
	assert.Empty(t, orch.Active())
}

func TestRefine_CancelMidFlight(t *testing.T) {
	provider := newFakeProvider()
	provider.blockOnCtx = true
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	id := uuid.New()
	done := make(chan error, 1)
	go func() {
		_, err := orch.Refine(context.Background(), id, refineRequest())
		done <- err
	}()

	<-provider.started
	require.True(t, orch.Cancel(id), "a live operation must be found")

	err := <-done
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrCancelled, opErr.Kind)

	statuses := collector.statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusCancelled, statuses[len(statuses)-1])

	assert.False(t, orch.Cancel(id), "second cancel must report not found")
	assert.Empty(t, orch.Active(), "registry entry must be removed")
}

func TestCancel_AfterCompletionReturnsFalse(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	orch := New(provider, Options{})

	id := uuid.New()
	_, err := orch.Refine(context.Background(), id, refineRequest())
	require.NoError(t, err)

	assert.False(t, orch.Cancel(id))
}

func TestCancel_UnknownOperationReturnsFalse(t *testing.T) {
	orch := New(newFakeProvider(fakeResponse{out: validRefinedJSON}), Options{})
	assert.False(t, orch.Cancel(uuid.New()))
}

func TestRefine_DuplicateOperationIDRejected(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	orch := New(provider, Options{})

	id := uuid.New()
	require.True(t, orch.registry.Add(id, NewCancelToken()))
	defer orch.registry.Remove(id)

	_, err := orch.Refine(context.Background(), id, refineRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrExecutionFailed, opErr.Kind)
}

func TestRefine_OverridesReachThePrompt(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	orch := New(provider, Options{
		BaseOptions: func() types.PromptOptions {
			base := types.DefaultPromptOptions()
			base.Tone = types.ToneConcise
			return base
		},
	})

	limit := 250
	req := refineRequest()
	req.Overrides = &types.PromptOverrides{MaxSummaryChars: &limit}

	_, err := orch.Refine(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	prompt := provider.lastPrompt()
	assert.Contains(t, prompt, "250", "per-call override must replace the settings value")
	assert.Contains(t, prompt, string(types.ToneConcise), "settings base must fill unoverridden fields")
}

func TestRefine_HighlightLimitEnforcedOnOutput(t *testing.T) {
	overLimit := `{
  "personalInfo": {"name": "Ada Lovelace", "email": "ada@example.com"},
  "workExperience": [
    {"company": "Analytical Engines Ltd", "position": "Lead Engineer", "startDate": "2019-03",
     "highlights": ["one", "two", "three", "four", "five", "six", "seven"]}
  ],
  "skills": ["Go"]
}`
	provider := newFakeProvider(fakeResponse{out: overLimit})
	orch := New(provider, Options{})

	limit := 2
	req := refineRequest()
	req.Overrides = &types.PromptOverrides{MaxHighlightsPerJob: &limit}

	_, err := orch.Refine(context.Background(), uuid.New(), req)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrValidationFailed, opErr.Kind, "an over-limit highlight list must not pass as a success")
	assert.Contains(t, opErr.Detail, "highlights")
}

func TestRefine_HighlightLimitFailureIsRetried(t *testing.T) {
	overLimit := `{
  "personalInfo": {"name": "Ada Lovelace", "email": "ada@example.com"},
  "workExperience": [
    {"company": "Analytical Engines Ltd", "position": "Lead Engineer", "startDate": "2019-03",
     "highlights": ["one", "two", "three"]}
  ],
  "skills": ["Go"]
}`
	provider := newFakeProvider(
		fakeResponse{out: overLimit},
		fakeResponse{out: validRefinedJSON},
	)
	orch := New(provider, Options{MaxRetries: 1})

	limit := 2
	req := refineRequest()
	req.Overrides = &types.PromptOverrides{MaxHighlightsPerJob: &limit}

	outcome, err := orch.Refine(context.Background(), uuid.New(), req)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Len(t, outcome.Resume.WorkExperience[0].Highlights, 1)
}

func TestCoverLetter_ParagraphLimitEnforcedOnOutput(t *testing.T) {
	overLimit := `{
  "companyName": "Initech",
  "opening": "Dear Hiring Manager,",
  "bodyParagraphs": ["first", "second", "third", "fourth"],
  "closing": "Sincerely,",
  "signature": "Ada Lovelace"
}`
	provider := newFakeProvider(fakeResponse{out: overLimit})
	orch := New(provider, Options{})

	limit := 2
	req := letterRequest()
	req.Overrides = &types.PromptOverrides{MaxBodyParagraphs: &limit}

	_, err := orch.CoverLetter(context.Background(), uuid.New(), req)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrValidationFailed, opErr.Kind)
	assert.Contains(t, opErr.Detail, "bodyParagraphs")
}

func TestCoverLetter_HappyPath(t *testing.T) {
	provider := newFakeProvider(fakeResponse{out: validLetterJSON})
	collector := &eventCollector{}
	orch := New(provider, Options{Sinks: []ProgressSink{collector}})

	outcome, err := orch.CoverLetter(context.Background(), uuid.New(), letterRequest())

	require.NoError(t, err)
	assert.Equal(t, "Initech", outcome.Letter.CompanyName)
	assert.Equal(t, "Dear Hiring Manager,", outcome.Letter.Opening)

	events := collector.snapshot()
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, KindCoverLetter, e.Kind)
	}
	assert.Equal(t, StatusCompleted, events[len(events)-1].Status)
}

func TestCoverLetter_ValidationBoundToLetterSchema(t *testing.T) {
	// A refined resume payload must not pass the cover letter schema.
	provider := newFakeProvider(fakeResponse{out: validRefinedJSON})
	orch := New(provider, Options{})

	_, err := orch.CoverLetter(context.Background(), uuid.New(), letterRequest())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrValidationFailed, opErr.Kind)
}
