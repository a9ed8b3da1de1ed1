// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mwilhelm/applypilot/internal/ingestion"
	"github.com/mwilhelm/applypilot/internal/tailoring"
	"github.com/mwilhelm/applypilot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// PrintRefinedResume outputs a human-readable summary of a refined resume.
func (p *Printer) PrintRefinedResume(resume *types.RefinedResume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", resume.PersonalInfo.Name))
	if resume.PersonalInfo.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", truncate(resume.PersonalInfo.Summary, 44)))
	}
	sb.WriteString("\n")

	if len(resume.WorkExperience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(resume.WorkExperience)))
		count := min(len(resume.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := resume.WorkExperience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s (%d highlights)\n",
				truncate(exp.Position, 24), truncate(exp.Company, 14), len(exp.Highlights)))
		}
		if len(resume.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resume.WorkExperience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(resume.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", truncate(strings.Join(resume.Skills, ", "), 44)))
	}

	if meta := resume.RefinementMetadata; meta != nil {
		if len(meta.TargetedKeywords) > 0 {
			sb.WriteString(fmt.Sprintf("Keywords: %s\n", truncate(strings.Join(meta.TargetedKeywords, ", "), 44)))
		}
		if meta.ConfidenceScore > 0 {
			sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", meta.ConfidenceScore))
		}
	}

	p.printBox("REFINED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverLetter outputs a summary of a generated cover letter.
func (p *Printer) PrintCoverLetter(letter *types.CoverLetter) {
	if letter == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", letter.CompanyName))
	if letter.RecipientName != "" {
		sb.WriteString(fmt.Sprintf("To:       %s\n", letter.RecipientName))
	}
	sb.WriteString(fmt.Sprintf("Opening:  %s\n", truncate(letter.Opening, 44)))
	sb.WriteString(fmt.Sprintf("Body:     %d paragraph(s)\n", len(letter.BodyParagraphs)))

	if meta := letter.GenerationMetadata; meta != nil {
		if meta.Tone != "" {
			sb.WriteString(fmt.Sprintf("Tone:     %s\n", meta.Tone))
		}
		if meta.WordCount > 0 {
			sb.WriteString(fmt.Sprintf("Words:    %d\n", meta.WordCount))
		}
	}

	p.printBox("COVER LETTER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIngest outputs where a posting came from and what was kept.
func (p *Printer) PrintIngest(result *ingestion.Result) {
	if result == nil {
		return
	}

	meta := result.Meta
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", meta.Source))
	if meta.URL != "" {
		sb.WriteString(fmt.Sprintf("URL:      %s\n", truncate(meta.URL, 44)))
	}
	if meta.Platform != "" && meta.Platform != "unknown" {
		sb.WriteString(fmt.Sprintf("Platform: %s\n", meta.Platform))
	}
	if meta.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", meta.Company))
	}
	if meta.RoleTitle != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", meta.RoleTitle))
	}
	sb.WriteString(fmt.Sprintf("Text:     %d chars\n", meta.Chars))
	sb.WriteString(fmt.Sprintf("Hash:     %s\n", truncate(meta.Hash, 16)))
	if meta.FromCache {
		sb.WriteString("Cache:    hit\n")
	}

	p.printBox("INGESTED JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDetection outputs the result of a CLI tool probe.
func (p *Printer) PrintDetection(tool, path string, found bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tool:     %s\n", tool))
	if found {
		sb.WriteString("Status:   ✓ available\n")
		sb.WriteString(fmt.Sprintf("Path:     %s", truncate(path, 44)))
	} else {
		sb.WriteString("Status:   ✗ not found")
	}

	p.printBox("CLI DETECTION", sb.String())
}

// PrintProgress writes one line per lifecycle event. Meant for -v runs where
// the user wants to watch an operation move.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event tailoring.ProgressEvent) {
	if event.Message != "" {
		fmt.Fprintf(p.out, "[%3d%%] %-10s %s\n", event.Progress, event.Status, event.Message)
		return
	}
	fmt.Fprintf(p.out, "[%3d%%] %s\n", event.Progress, event.Status)
}

// PrintOutcome writes the one-line wrap-up after an operation finishes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(kind tailoring.Kind, attempts int, elapsed time.Duration) {
	fmt.Fprintf(p.out, "%s finished in %s after %d attempt(s)\n", kind, elapsed.Round(time.Millisecond), attempts)
}
