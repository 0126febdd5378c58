package types

// Candidate represents one retrieved profile snippet considered as a prospect for a job.
// Inferred fields are nil when upstream extraction could not determine them.
type Candidate struct {
	ID               string  `json:"id,omitempty"`
	JobID            string  `json:"job_id,omitempty"`
	LinkedInURL      string  `json:"linkedin_url" validate:"required"`
	InferredName     *string `json:"inferred_name,omitempty"`
	InferredTitle    *string `json:"inferred_title,omitempty"`
	InferredLocation *string `json:"inferred_location,omitempty"`
	InferredCompany  *string `json:"inferred_company,omitempty"`
	// ResultTitle is the raw search result title, usually "Name - Title - Company".
	ResultTitle   string         `json:"result_title,omitempty"`
	ResultSnippet string         `json:"result_snippet"`
	Scoring       *ScoringRecord `json:"scoring,omitempty"`
}

// ScoringRecord is attached to a Candidate once it has been scored for a persona.
type ScoringRecord struct {
	PersonaID        string         `json:"persona_id"`
	Fingerprint      string         `json:"fingerprint"`
	Scores           Scores         `json:"scores"`
	Explainability   Explainability `json:"explainability"`
	Unscorable       bool           `json:"unscorable,omitempty"`
	UnscorableReason string         `json:"unscorable_reason,omitempty"`
}

// Scores is the four-factor score tuple plus the final weighted score.
type Scores struct {
	Semantic float64 `json:"semantic"`
	Role     float64 `json:"role"`
	Industry float64 `json:"industry"`
	Geo      float64 `json:"geo"`
	Final    float64 `json:"final"`
}

// Explainability holds the matched keywords and per-factor contributions behind a final score.
type Explainability struct {
	KeywordsMatched      []string           `json:"keywords_matched"`
	FeatureContributions map[string]float64 `json:"feature_contributions"`
}

// Validate validates the Candidate using the validator.
func (c *Candidate) Validate() error {
	return validate.Struct(c)
}

// IsScored reports whether the candidate carries a scoring record.
func (c *Candidate) IsScored() bool {
	return c.Scoring != nil
}

// Deref returns the value of an optional string field, or "" when nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
