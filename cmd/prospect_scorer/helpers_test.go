package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// runCLI executes the root command in-process and returns what it wrote to stdout.
// Flag values from earlier runs are reset first since the commands are package globals.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func testBundle() *types.JobBundle {
	return &types.JobBundle{
		JobID: "job_1",
		ICP: types.ICP{
			ID:       "icp_1",
			JobID:    "job_1",
			Industry: "SaaS",
		},
		Personas: []types.Persona{{
			ID:       "persona_1",
			ICPID:    "icp_1",
			Titles:   []string{"VP Sales"},
			Keywords: []string{"quota", "pipeline"},
		}},
		Candidates: []*types.Candidate{
			{
				LinkedInURL:     "https://linkedin.com/in/weak",
				InferredName:    types.StringPtr("Wes Weak"),
				InferredTitle:   types.StringPtr("Software Engineer"),
				InferredCompany: types.StringPtr("Widgets Inc"),
				ResultSnippet:   "Writes Go code all day.",
			},
			{
				LinkedInURL:      "https://linkedin.com/in/strong",
				InferredName:     types.StringPtr("Sam Strong"),
				InferredTitle:    types.StringPtr("VP Sales"),
				InferredCompany:  types.StringPtr("Acme SaaS"),
				InferredLocation: types.StringPtr("Austin, TX"),
				ResultSnippet:    "VP Sales at Acme SaaS. Built pipeline and beat quota every year.",
			},
		},
	}
}

// writeBundle writes a bundle to a temp file and returns its path.
func writeBundle(t *testing.T, bundle *types.JobBundle) string {
	t.Helper()
	content, err := json.Marshal(bundle)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}
