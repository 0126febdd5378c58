package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scorer/internal/export"
	"github.com/jonathan/prospect-scorer/internal/types"
)

func TestExportCommand_CSVFile(t *testing.T) {
	bundlePath := writeBundle(t, testBundle())
	outPath := filepath.Join(t.TempDir(), "candidates.csv")

	stdout, err := runCLI(t, "export", "--bundle", bundlePath, "--persona", "persona_1", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully exported 2 candidates")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, export.Header, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "https://linkedin.com/in/strong", records[1][1])
	assert.Equal(t, "https://linkedin.com/in/weak", records[2][1])
}

func TestExportCommand_JSONStdout(t *testing.T) {
	bundlePath := writeBundle(t, testBundle())

	stdout, err := runCLI(t, "export", "--bundle", bundlePath, "--persona", "persona_1",
		"--format", "json", "--min-score", "0.5")
	require.NoError(t, err)

	var ranked []types.ScoredCandidate
	require.NoError(t, json.Unmarshal([]byte(stdout), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://linkedin.com/in/strong", ranked[0].LinkedInURL)
}

func TestExportCommand_AllPages(t *testing.T) {
	bundle := testBundle()
	bundle.Candidates = nil
	for i := 0; i < 150; i++ {
		bundle.Candidates = append(bundle.Candidates, &types.Candidate{
			LinkedInURL:   fmt.Sprintf("https://linkedin.com/in/p%03d", i),
			ResultSnippet: "VP Sales growing pipeline",
		})
	}
	bundlePath := writeBundle(t, bundle)

	stdout, err := runCLI(t, "export", "--bundle", bundlePath, "--persona", "persona_1", "--format", "json")
	require.NoError(t, err)

	var ranked []types.ScoredCandidate
	require.NoError(t, json.Unmarshal([]byte(stdout), &ranked))
	require.Len(t, ranked, 150)
	for i, c := range ranked {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		out     string
		want    export.Format
		wantErr bool
	}{
		{name: "flag wins", flag: "json", out: "x.csv", want: export.FormatJSON},
		{name: "extension", out: "x.json", want: export.FormatJSON},
		{name: "unknown extension", out: "x.txt", want: export.FormatCSV},
		{name: "default", want: export.FormatCSV},
		{name: "bad flag", flag: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.flag, tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
