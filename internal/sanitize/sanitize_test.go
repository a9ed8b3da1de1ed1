package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Led a team of five engineers.",
			want:  "Led a team of five engineers.",
		},
		{
			name:  "zero width characters removed",
			input: "Jane\u200b Doe\u200c\u200d\ufeff",
			want:  "Jane Doe",
		},
		{
			name:  "soft hyphen and directional marks removed",
			input: "micro\u00adservices \u202aordered\u202c",
			want:  "microservices ordered",
		},
		{
			name:  "windows line endings normalized",
			input: "first line\r\nsecond line\rthird line",
			want:  "first line\nsecond line\nthird line",
		},
		{
			name:  "non breaking space becomes space",
			input: "eight\u00a0years",
			want:  "eight years",
		},
		{
			name:  "runs of spaces collapse",
			input: "too   many    spaces",
			want:  "too many spaces",
		},
		{
			name:  "excess blank lines collapse",
			input: "para one\n\n\n\n\npara two",
			want:  "para one\n\npara two",
		},
		{
			name:  "trailing whitespace trimmed per line",
			input: "line one   \nline two\t",
			want:  "line one\nline two",
		},
		{
			name:  "bold and emphasis stripped",
			input: "**Led** the *entire* migration",
			want:  "Led the entire migration",
		},
		{
			name:  "underscore emphasis stripped",
			input: "a __bold__ and _subtle_ claim",
			want:  "a bold and subtle claim",
		},
		{
			name:  "snake case identifiers survive",
			input: "tuned max_batch_size and io_wait_ms",
			want:  "tuned max_batch_size and io_wait_ms",
		},
		{
			name:  "inline code stripped",
			input: "wrote `kubectl` tooling",
			want:  "wrote kubectl tooling",
		},
		{
			name:  "fence lines removed",
			input: "```json\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "links reduced to their text",
			input: "see [my portfolio](https://example.com) for details",
			want:  "see my portfolio for details",
		},
		{
			name:  "adjacent emphasis all stripped",
			input: "_a_ _b_ _c_",
			want:  "a b c",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n padded \n ",
			want:  "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(tt.input, opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString_Idempotent(t *testing.T) {
	opts := DefaultOptions()

	inputs := []string{
		"plain text",
		"**bold** _em_ `code` [x](y)",
		"\u200bhidden\u00a0space\r\nline",
		"  ```json\n{\"k\": \"v\"}\n```  ",
		"_a_ _b_ _c_ **d** **e**",
		"para\n\n\n\npara   two\t\n",
	}

	for _, in := range inputs {
		once := String(in, opts)
		twice := String(once, opts)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestString_MarkdownOptional(t *testing.T) {
	opts := Options{StripMarkdown: false}

	got := String("**bold** stays, \u200bzero width goes", opts)
	assert.Equal(t, "**bold** stays, zero width goes", got)
}

func TestTree(t *testing.T) {
	opts := DefaultOptions()

	in := map[string]any{
		"name":    "Jane\u200b Doe",
		"summary": "**Strong** engineer",
		"years":   float64(8),
		"remote":  true,
		"highlights": []any{
			"Shipped *v2* of the platform",
			"Cut costs by 30%",
		},
		"metadata": map[string]any{
			"confidenceScore": 0.9,
			"changesSummary":  "Tightened   wording",
		},
	}

	got, ok := Tree(in, opts).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "Jane Doe", got["name"])
	assert.Equal(t, "Strong engineer", got["summary"])
	assert.Equal(t, float64(8), got["years"])
	assert.Equal(t, true, got["remote"])

	highlights, ok := got["highlights"].([]any)
	require.True(t, ok)
	assert.Equal(t, "Shipped v2 of the platform", highlights[0])
	assert.Equal(t, "Cut costs by 30%", highlights[1])

	meta, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.9, meta["confidenceScore"])
	assert.Equal(t, "Tightened wording", meta["changesSummary"])
}

func TestTree_Idempotent(t *testing.T) {
	opts := DefaultOptions()

	in := map[string]any{
		"a": "**x**\u200b",
		"b": []any{"_y_", map[string]any{"c": "z\r\n"}},
	}

	once := Tree(in, opts)
	twice := Tree(once, opts)
	assert.Equal(t, once, twice)
}

func TestJSON(t *testing.T) {
	raw := []byte(`{"summary":"**Led** the team","score":0.75}`)

	out, err := JSON(raw, DefaultOptions())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Led the team", decoded["summary"])
	assert.Equal(t, 0.75, decoded["score"])
}

func TestJSON_InvalidInput(t *testing.T) {
	_, err := JSON([]byte("not json"), DefaultOptions())
	assert.Error(t, err)
}
