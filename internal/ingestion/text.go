// Package ingestion turns job postings into clean text the tailoring
// operations can work with. A posting arrives as pasted text, a local file,
// or a URL; all three paths end in the same normalized form.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpaceRE = regexp.MustCompile(`\s+`)
	blankRunRE   = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes posting text while keeping its structure. Line
// endings become LF, runs of spaces collapse, and blank-line runs shrink to
// one separator line. Markdown headings and bullets survive untouched so the
// prompt keeps the posting's outline.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunRE.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return ""
	}

	// Headings lose their indentation, bullets keep theirs.
	if strings.HasPrefix(trimmed, "#") {
		return strings.TrimRight(trimmed, " \t")
	}
	indent := line[:len(line)-len(trimmed)]
	if isBullet(trimmed) {
		return strings.ReplaceAll(indent, "\t", "  ") + strings.TrimRight(trimmed, " \t")
	}

	content := innerSpaceRE.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.ReplaceAll(indent, "\t", "  ") + content
}

func isBullet(trimmed string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
