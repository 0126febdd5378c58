package types

// CandidateFilters holds optional filter predicates applied conjunctively to scored candidates.
type CandidateFilters struct {
	MinScore     *float64 `json:"min_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxScore     *float64 `json:"max_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	Location     string   `json:"location,omitempty"`
	Company      string   `json:"company,omitempty"`
	TitlePattern string   `json:"title_pattern,omitempty"` // Case-insensitive regular expression
	PersonaID    string   `json:"persona_id,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f CandidateFilters) IsEmpty() bool {
	return f.MinScore == nil && f.MaxScore == nil && f.Location == "" &&
		f.Company == "" && f.TitlePattern == "" && f.PersonaID == ""
}

// ScoredCandidate is a ranked view of a candidate with its scoring record.
type ScoredCandidate struct {
	Rank             int            `json:"rank"`
	ID               string         `json:"id,omitempty"`
	JobID            string         `json:"job_id,omitempty"`
	LinkedInURL      string         `json:"linkedin_url"`
	InferredName     *string        `json:"inferred_name,omitempty"`
	InferredTitle    *string        `json:"inferred_title,omitempty"`
	InferredLocation *string        `json:"inferred_location,omitempty"`
	InferredCompany  *string        `json:"inferred_company,omitempty"`
	ResultSnippet    string         `json:"result_snippet"`
	Scores           Scores         `json:"scores"`
	Explainability   Explainability `json:"explainability"`
	Unscorable       bool           `json:"unscorable,omitempty"`
	UnscorableReason string         `json:"unscorable_reason,omitempty"`
}

// CandidatePage is one page of ranked candidates plus pagination metadata.
type CandidatePage struct {
	JobID      string            `json:"job_id"`
	PersonaID  string            `json:"persona_id"`
	Candidates []ScoredCandidate `json:"candidates"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	// Incomplete is set when ranking was cancelled before every candidate was scored.
	Incomplete bool `json:"incomplete"`
	Skipped    int  `json:"skipped"`
	Unscorable int  `json:"unscorable"`
}
