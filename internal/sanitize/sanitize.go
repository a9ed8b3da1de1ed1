// Package sanitize cleans model-produced text before it reaches callers.
// It strips invisible Unicode, normalizes whitespace and line endings, and
// optionally removes markdown syntax from every string leaf of a decoded
// JSON tree. All operations are idempotent.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Options controls which cleanups run.
type Options struct {
	// StripMarkdown removes emphasis, inline code, fence markers and link
	// syntax. Invisible-character removal and whitespace normalization
	// always run.
	StripMarkdown bool
}

// DefaultOptions returns the options used when the caller has no preference.
func DefaultOptions() Options {
	return Options{StripMarkdown: true}
}

var (
	boldStars       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	emphasisStars   = regexp.MustCompile(`\*([^*\n]+)\*`)
	boldUnderscore  = regexp.MustCompile(`\b__([^_\n]+)__\b`)
	emphUnderscore  = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	inlineCode      = regexp.MustCompile("`([^`\n]*)`")
	fenceLine       = regexp.MustCompile("(?m)^[ \t]*```[^\n]*\n?")
	markdownLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	runsOfBlanks    = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpace   = regexp.MustCompile(`(?m)[ \t]+$`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	invisibleChars  = regexp.MustCompile(`[\x{200B}-\x{200F}\x{202A}-\x{202E}\x{2060}-\x{2064}\x{00AD}\x{FEFF}]`)
	nonBreakingSpce = regexp.MustCompile(`[\x{00A0}\x{2007}\x{202F}]`)
)

// String cleans a single string value. The result is a fixed point:
// sanitizing it again returns it unchanged.
func String(s string, opts Options) string {
	// Stripping one artifact can expose another (markdown behind an
	// invisible character, a fence behind trimmed whitespace), so the
	// pass repeats until the text stops changing.
	for {
		next := cleanPass(s, opts)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanPass(s string, opts Options) string {
	// Line endings first so every later pattern only sees \n.
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = invisibleChars.ReplaceAllString(s, "")
	s = nonBreakingSpce.ReplaceAllString(s, " ")

	if opts.StripMarkdown {
		s = fenceLine.ReplaceAllString(s, "")
		s = inlineCode.ReplaceAllString(s, "$1")
		s = markdownLink.ReplaceAllString(s, "$1")
		s = boldStars.ReplaceAllString(s, "$1")
		s = emphasisStars.ReplaceAllString(s, "$1")
		s = boldUnderscore.ReplaceAllString(s, "$1")
		s = emphUnderscore.ReplaceAllString(s, "$1")
	}

	s = runsOfBlanks.ReplaceAllString(s, " ")
	s = trailingSpace.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// Tree walks a decoded JSON value and cleans every string leaf, returning a
// rebuilt tree. Non-string scalars pass through untouched, so the shape the
// validator accepted is preserved.
func Tree(v any, opts Options) any {
	switch x := v.(type) {
	case string:
		return String(x, opts)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = Tree(x[i], opts)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = Tree(vv, opts)
		}
		return out
	default:
		return v
	}
}

// JSON decodes raw JSON, cleans every string leaf, and re-encodes the result.
func JSON(raw []byte, opts Options) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(Tree(v, opts))
}
