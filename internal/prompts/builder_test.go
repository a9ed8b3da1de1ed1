package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwilhelm/applypilot/internal/types"
)

func testResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Summary: "Backend engineer focused on reliability.",
		},
		WorkExperience: []types.WorkExperience{
			{
				Company:    "Acme Corp",
				Position:   "Senior Engineer",
				StartDate:  "2019-03",
				Highlights: []string{"Led migration to event-driven architecture"},
			},
		},
		Skills: []string{"Go", "PostgreSQL"},
	}
}

const testJobText = "We are hiring a senior backend engineer to own our payments platform and its reliability story."

func TestBuildRefinePrompt(t *testing.T) {
	opts := types.DefaultPromptOptions()

	system, user, err := BuildRefinePrompt(testResume(), testJobText, opts)
	require.NoError(t, err)

	assert.Contains(t, system, "ONLY a single JSON object")
	assert.Contains(t, system, "never invent")

	assert.Contains(t, user, `"name": "Jane Doe"`)
	assert.Contains(t, user, testJobText)
	assert.Contains(t, user, "at or under 400 characters")
	assert.Contains(t, user, "at most 5 highlights")
	assert.Contains(t, user, "professional tone")
	assert.Contains(t, user, "refinementMetadata")
}

func TestBuildRefinePrompt_Deterministic(t *testing.T) {
	opts := types.DefaultPromptOptions()
	opts.FocusAreas = []string{"reliability", "payments"}
	opts.CustomInstructions = "Mention open source work."

	sys1, user1, err := BuildRefinePrompt(testResume(), testJobText, opts)
	require.NoError(t, err)
	sys2, user2, err := BuildRefinePrompt(testResume(), testJobText, opts)
	require.NoError(t, err)

	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2)
}

func TestBuildRefinePrompt_OptionsShapeInstructions(t *testing.T) {
	opts := types.DefaultPromptOptions()
	opts.MaxSummaryChars = 250
	opts.MaxHighlightsPerJob = 3
	opts.Tone = types.ToneConcise
	opts.PreserveAllContent = true
	opts.IncludeMetadata = false
	opts.FocusAreas = []string{"Kubernetes"}
	opts.CustomInstructions = "Avoid first person."

	_, user, err := BuildRefinePrompt(testResume(), testJobText, opts)
	require.NoError(t, err)

	assert.Contains(t, user, "at or under 250 characters")
	assert.Contains(t, user, "at most 3 highlights")
	assert.Contains(t, user, "concise tone")
	assert.Contains(t, user, "reorder and rephrase only")
	assert.Contains(t, user, "Omit the refinementMetadata field")
	assert.Contains(t, user, "Kubernetes")
	assert.Contains(t, user, "Avoid first person.")
	assert.NotContains(t, user, "Include refinementMetadata")
}

func TestBuildCoverLetterPrompt(t *testing.T) {
	opts := types.DefaultPromptOptions()

	system, user, err := BuildCoverLetterPrompt(testResume(), testJobText, "Acme Corp", "", opts)
	require.NoError(t, err)

	assert.Contains(t, system, "ONLY a single JSON object")
	assert.Contains(t, user, "addressed to Acme Corp")
	assert.Contains(t, user, "at most 3 body paragraphs")
	assert.NotContains(t, user, "COMPANY INFORMATION")
}

func TestBuildCoverLetterPrompt_CompanyInfo(t *testing.T) {
	opts := types.DefaultPromptOptions()
	opts.EmphasizeCompanyKnowledge = true

	_, user, err := BuildCoverLetterPrompt(testResume(), testJobText, "Acme Corp",
		"Acme builds settlement infrastructure for credit unions.", opts)
	require.NoError(t, err)

	assert.Contains(t, user, "=== COMPANY INFORMATION ===")
	assert.Contains(t, user, "settlement infrastructure")
	assert.Contains(t, user, "familiarity with the company")
}

func TestCombine(t *testing.T) {
	combined := Combine("system text", "user text")

	assert.True(t, strings.HasPrefix(combined, "system text"))
	assert.True(t, strings.HasSuffix(combined, "user text"))
	assert.Contains(t, combined, "\n\n")
}
