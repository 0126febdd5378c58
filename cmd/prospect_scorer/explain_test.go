package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scorer/internal/types"
)

func TestExplainCommand_Text(t *testing.T) {
	bundlePath := writeBundle(t, testBundle())

	stdout, err := runCLI(t, "explain", "--bundle", bundlePath, "--persona", "persona_1",
		"--url", "https://linkedin.com/in/strong")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SCORE EXPLANATION")
	assert.Contains(t, stdout, "Sam Strong")
	assert.Contains(t, stdout, "semantic")
	assert.Contains(t, stdout, "Matched keywords")
}

func TestExplainCommand_JSON(t *testing.T) {
	bundlePath := writeBundle(t, testBundle())

	stdout, err := runCLI(t, "explain", "-b", bundlePath, "-p", "persona_1",
		"-u", "https://linkedin.com/in/weak", "--output-json")
	require.NoError(t, err)

	var scored types.ScoredCandidate
	require.NoError(t, json.Unmarshal([]byte(stdout), &scored))
	assert.Equal(t, "https://linkedin.com/in/weak", scored.LinkedInURL)
	assert.Equal(t, 1, scored.Rank)
	assert.False(t, scored.Unscorable)
	assert.InDelta(t, 0.0, scored.Scores.Role, 1e-9)
	assert.Len(t, scored.Explainability.FeatureContributions, 4)
}

func TestExplainCommand_Errors(t *testing.T) {
	bundlePath := writeBundle(t, testBundle())

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing url flag",
			args:    []string{"explain", "--bundle", bundlePath, "--persona", "persona_1"},
			wantErr: "required flag",
		},
		{
			name:    "unknown candidate",
			args:    []string{"explain", "--bundle", bundlePath, "--persona", "persona_1", "--url", "https://linkedin.com/in/nobody"},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExplainCommand_LineageMismatch(t *testing.T) {
	bundle := testBundle()
	bundle.Personas[0].ICPID = "icp_other"
	bundlePath := writeBundle(t, bundle)

	_, err := runCLI(t, "explain", "--bundle", bundlePath, "--persona", "persona_1",
		"--url", "https://linkedin.com/in/strong")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrLineageMismatch)
}
