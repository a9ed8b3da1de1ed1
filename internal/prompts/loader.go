// Package prompts builds the system and user prompts for resume refinement
// and cover-letter generation. Template text lives in JSON files embedded at
// compile time; the builder stitches templates together with per-operation
// instructions derived from prompt options.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// cache stores parsed template files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a template by filename and key.
// The filename should not include a path (e.g. "refine_resume.json").
func Get(filename, key string) (string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	tmpl, exists := templates[key]
	if !exists {
		return "", fmt.Errorf("template key %q not found in %s", key, filename)
	}

	return tmpl, nil
}

// MustGet retrieves a template by filename and key, panicking if not found.
// Embedded templates are fixed at compile time, so a miss is a programming error.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load template: %v", err))
	}
	return tmpl
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// The template is scanned once, left to right: substituted values are emitted
// verbatim and never re-expanded, and unknown placeholders stay literal.
func Format(template string, data map[string]string) string {
	var sb strings.Builder
	rest := template
	for {
		i := strings.Index(rest, "{{.")
		if i == -1 {
			sb.WriteString(rest)
			return sb.String()
		}
		end := strings.Index(rest[i:], "}}")
		if end == -1 {
			sb.WriteString(rest)
			return sb.String()
		}
		key := rest[i+3 : i+end]
		if value, ok := data[key]; ok {
			sb.WriteString(rest[:i])
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[:i+end+2])
		}
		rest = rest[i+end+2:]
	}
}

// loadFile loads and caches a template file.
func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if templates, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return templates, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", filename, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = templates
	cacheMu.Unlock()

	return templates, nil
}

// ClearCache clears the template cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
