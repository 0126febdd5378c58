// Package schemas embeds the JSON Schemas for the CLI's input and output documents.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	CandidatePage = "candidate_page.schema.json"
	JobBundle     = "job_bundle.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the content of an embedded schema.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return string(data), nil
}

// Names lists the embedded schemas.
func Names() []string {
	return []string{CandidatePage, JobBundle}
}
