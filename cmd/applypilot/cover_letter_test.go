package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverLetterCommand_MissingCompany(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	jobFile := filepath.Join(tmpDir, "job.txt")
	require.NoError(t, os.WriteFile(jobFile, []byte("test posting"), 0644))

	cmd := exec.Command(binaryPath, "cover-letter", "--resume", writeTestResume(t), "--job", jobFile)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "company")
}

func TestCoverLetterCommand_MissingResume(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "cover-letter", "--company", "Acme", "--job", "job.txt")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "resume")
}

func TestCoverLetterCommand_MissingJobSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "cover-letter", "--resume", writeTestResume(t), "--company", "Acme")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "either --job or --job-url must be provided")
}

func TestCoverLetterCommand_LetterOnlyFlagsExist(t *testing.T) {
	binaryPath := getBinaryPath(t)

	// --max-paragraphs is registered on cover-letter but not on refine.
	cmd := exec.Command(binaryPath, "cover-letter", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "--max-paragraphs")
	assert.Contains(t, string(output), "--emphasize-company")

	cmd = exec.Command(binaryPath, "refine", "--help")
	output, err = cmd.CombinedOutput()
	require.NoError(t, err)
	assert.NotContains(t, string(output), "--max-paragraphs")
}
