// Package parsing isolates the JSON document inside raw model output. CLI
// models routinely wrap their answer in commentary or markdown fences even
// when told not to, so extraction scans for structure instead of trusting
// the surrounding text.
package parsing

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first complete top-level JSON object found in
// raw. Fenced code blocks are searched before the surrounding text, since a
// fence is the strongest signal of where the model put its answer. Exactly
// one object is extracted; anything after the first balanced object is
// ignored. A ParseError is returned when no well-formed object can be
// isolated.
func ExtractJSONObject(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ParseError{Message: "output is empty"}
	}

	if fenced := firstFencedBlock(trimmed); fenced != "" {
		if obj, err := scanObject(fenced); err == nil {
			return obj, nil
		}
	}

	return scanObject(trimmed)
}

// DecodeObject extracts the first JSON object from raw and unmarshals it.
func DecodeObject(raw string) (map[string]any, error) {
	text, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &ParseError{Message: "failed to decode extracted object", Cause: err}
	}
	return out, nil
}

// firstFencedBlock returns the contents of the first ``` fence, or "" when
// the text has no complete fence. A language identifier on the opening line
// (```json) is skipped.
func firstFencedBlock(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return ""
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(rest[:nl])
		// Opening fences carry at most a language id, never content.
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// scanObject finds the first balanced {...} in s that is valid JSON. Leading
// commentary can contain brace groups of its own ("{like this}"), so a
// candidate that balances but fails json.Valid does not end the search; the
// scan resumes from the next opening brace. The first failure is reported
// when every candidate is exhausted.
func scanObject(s string) (string, error) {
	var firstErr *ParseError
	for start := strings.IndexByte(s, '{'); start != -1; start = nextBrace(s, start) {
		candidate, err := scanBalanced(s, start)
		if err == nil {
			return candidate, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", &ParseError{Message: "no JSON object found in output"}
}

func nextBrace(s string, after int) int {
	i := strings.IndexByte(s[after+1:], '{')
	if i == -1 {
		return -1
	}
	return after + 1 + i
}

// scanBalanced scans the brace group opening at start, tracking string
// literals and escapes so braces inside values are not miscounted, and
// verifies the balanced candidate is valid JSON.
func scanBalanced(s string, start int) (string, *ParseError) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if !json.Valid([]byte(candidate)) {
						return "", &ParseError{Message: "extracted object is not valid JSON"}
					}
					return candidate, nil
				}
			}
		}
	}

	return "", &ParseError{Message: "JSON object is not terminated"}
}
