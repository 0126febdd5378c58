package types

import "fmt"

// JobBundle is the materialized input for one discovery job: its ICP, the personas derived
// from it, and the retrieved candidate pool.
type JobBundle struct {
	JobID      string       `json:"job_id"`
	ICP        ICP          `json:"icp"`
	Personas   []Persona    `json:"personas"`
	Candidates []*Candidate `json:"candidates"`
}

// FindPersona returns the persona with the given ID.
func (b *JobBundle) FindPersona(id string) (*Persona, error) {
	for i := range b.Personas {
		if b.Personas[i].ID == id {
			return &b.Personas[i], nil
		}
	}
	return nil, fmt.Errorf("persona %q not found in job %q", id, b.JobID)
}

// FindCandidate returns the candidate with the given profile URL.
func (b *JobBundle) FindCandidate(url string) (*Candidate, error) {
	for _, c := range b.Candidates {
		if c != nil && c.LinkedInURL == url {
			return c, nil
		}
	}
	return nil, fmt.Errorf("candidate %q not found in job %q", url, b.JobID)
}
