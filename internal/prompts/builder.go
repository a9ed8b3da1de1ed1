package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwilhelm/applypilot/internal/types"
)

// Template files
const (
	refineFile = "refine_resume.json"
	letterFile = "cover_letter.json"
)

// BuildRefinePrompt renders the system and user prompts for tailoring a
// resume to a job posting. Pure: identical inputs always produce identical
// strings, and every configured ceiling appears verbatim in the instructions.
func BuildRefinePrompt(resume types.Resume, jobText string, opts types.PromptOptions) (system, user string, err error) {
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode resume: %w", err)
	}

	system = MustGet(refineFile, "system")
	user = Format(MustGet(refineFile, "user"), map[string]string{
		"ResumeJSON":   string(resumeJSON),
		"JobText":      strings.TrimSpace(jobText),
		"Instructions": refineInstructions(opts),
	})
	return system, user, nil
}

// BuildCoverLetterPrompt renders the system and user prompts for generating
// a cover letter. companyInfo is optional research text about the employer.
func BuildCoverLetterPrompt(resume types.Resume, jobText, companyName, companyInfo string, opts types.PromptOptions) (system, user string, err error) {
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode resume: %w", err)
	}

	companySection := ""
	if strings.TrimSpace(companyInfo) != "" {
		companySection = "\n=== COMPANY INFORMATION ===\n" + strings.TrimSpace(companyInfo) + "\n"
	}

	system = MustGet(letterFile, "system")
	user = Format(MustGet(letterFile, "user"), map[string]string{
		"ResumeJSON":     string(resumeJSON),
		"JobText":        strings.TrimSpace(jobText),
		"CompanyName":    companyName,
		"CompanySection": companySection,
		"Instructions":   letterInstructions(opts),
	})
	return system, user, nil
}

// Combine joins a system and user prompt into the single text a stdin-fed
// CLI tool expects.
func Combine(system, user string) string {
	return system + "\n\n" + user
}

func refineInstructions(opts types.PromptOptions) string {
	lines := []string{
		fmt.Sprintf("Write in a %s tone with a %s structure.", opts.Tone, opts.Style),
		fmt.Sprintf("Keep personalInfo.summary at or under %d characters.", opts.MaxSummaryChars),
		fmt.Sprintf("Keep at most %d highlights per work experience entry, ordered by relevance to the posting.", opts.MaxHighlightsPerJob),
	}
	if opts.PreserveAllContent {
		lines = append(lines, "Keep every work experience entry, skill, and education entry; reorder and rephrase only.")
	} else {
		lines = append(lines, "You may drop less relevant highlights, but keep every employer and position.")
	}
	if len(opts.FocusAreas) > 0 {
		lines = append(lines, "Emphasize these focus areas: "+strings.Join(opts.FocusAreas, ", ")+".")
	}
	if opts.IncludeMetadata {
		lines = append(lines, "Include refinementMetadata with targetedKeywords, changesSummary, and a confidenceScore between 0 and 1.")
	} else {
		lines = append(lines, "Omit the refinementMetadata field.")
	}
	if strings.TrimSpace(opts.CustomInstructions) != "" {
		lines = append(lines, "Additional instructions: "+strings.TrimSpace(opts.CustomInstructions))
	}
	return bulleted(lines)
}

func letterInstructions(opts types.PromptOptions) string {
	lines := []string{
		fmt.Sprintf("Write in a %s tone with a %s structure.", opts.Tone, opts.Style),
		fmt.Sprintf("Write at most %d body paragraphs.", opts.MaxBodyParagraphs),
		"Keep each body paragraph under 120 words.",
	}
	if opts.EmphasizeCompanyKnowledge {
		lines = append(lines, "Show familiarity with the company using only the company information provided above.")
	}
	if len(opts.FocusAreas) > 0 {
		lines = append(lines, "Emphasize these focus areas: "+strings.Join(opts.FocusAreas, ", ")+".")
	}
	if opts.IncludeMetadata {
		lines = append(lines, "Include generationMetadata with tone, wordCount, and a confidenceScore between 0 and 1.")
	} else {
		lines = append(lines, "Omit the generationMetadata field.")
	}
	if strings.TrimSpace(opts.CustomInstructions) != "" {
		lines = append(lines, "Additional instructions: "+strings.TrimSpace(opts.CustomInstructions))
	}
	return bulleted(lines)
}

func bulleted(lines []string) string {
	return "- " + strings.Join(lines, "\n- ")
}
