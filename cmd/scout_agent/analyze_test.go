package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --in flag",
			args:        []string{"analyze", "--out", "profile.json"},
			errorString: "required",
		},
		{
			name:        "Missing --out flag",
			args:        []string{"analyze", "--in", "sow.cleaned.txt"},
			errorString: "required",
		},
	}

	binaryPath := getBinaryPath(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			assert.Error(t, err)
			assert.Contains(t, string(output), tt.errorString)
		})
	}
}

func TestAnalyzeCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	inFile := filepath.Join(tmpDir, "sow.cleaned.txt")
	err := os.WriteFile(inFile, []byte("Build a booking site"), 0644)
	require.NoError(t, err)

	cmd := exec.Command(binaryPath, "analyze",
		"--in", inFile,
		"--out", filepath.Join(tmpDir, "profile.json"))

	// Clear environment to ensure no API Key
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "GEMINI_API_KEY=") {
			env = append(env, e)
		}
	}
	cmd.Env = env

	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "API key is required")
}

func TestAnalyzeCommand_InvalidInputFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "analyze",
		"--in", "/nonexistent/sow.cleaned.txt",
		"--out", filepath.Join(tmpDir, "profile.json"),
		"--api-key", "test-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to read input file")
}
