package ranking

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/prospect-scorer/internal/types"
)

var filterValidator = validator.New()

// candidateFilter is a compiled, validated form of types.CandidateFilters.
type candidateFilter struct {
	minScore     *float64
	maxScore     *float64
	location     string
	company      string
	titlePattern *regexp.Regexp
	personaID    string
}

// compileFilters validates filters and compiles the title pattern. Every failure is an
// ErrInvalidArgument.
func compileFilters(f types.CandidateFilters) (*candidateFilter, error) {
	if f.IsEmpty() {
		return &candidateFilter{}, nil
	}
	if err := filterValidator.Struct(f); err != nil {
		return nil, types.InvalidArgumentCause(err, "invalid filters")
	}
	if f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore {
		return nil, types.InvalidArgument("min_score %v is greater than max_score %v", *f.MinScore, *f.MaxScore)
	}

	cf := &candidateFilter{
		minScore:  f.MinScore,
		maxScore:  f.MaxScore,
		location:  strings.ToLower(strings.TrimSpace(f.Location)),
		company:   strings.ToLower(strings.TrimSpace(f.Company)),
		personaID: f.PersonaID,
	}
	if f.TitlePattern != "" {
		re, err := regexp.Compile("(?i)" + f.TitlePattern)
		if err != nil {
			return nil, types.InvalidArgumentCause(err, "title_pattern %q", f.TitlePattern)
		}
		cf.titlePattern = re
	}
	return cf, nil
}

// matches reports whether a scored candidate passes every supplied filter.
func (cf *candidateFilter) matches(v *types.ScoredCandidate, personaID string) bool {
	final := v.Scores.Final
	if cf.minScore != nil && final < *cf.minScore {
		return false
	}
	if cf.maxScore != nil && final > *cf.maxScore {
		return false
	}
	if cf.location != "" && !containsFold(types.Deref(v.InferredLocation), cf.location) {
		return false
	}
	if cf.company != "" && !containsFold(types.Deref(v.InferredCompany), cf.company) {
		return false
	}
	if cf.titlePattern != nil {
		title := types.Deref(v.InferredTitle)
		if title == "" || !cf.titlePattern.MatchString(title) {
			return false
		}
	}
	if cf.personaID != "" && cf.personaID != personaID {
		return false
	}
	return true
}

// containsFold reports whether lowerNeedle occurs in s, ignoring case.
func containsFold(s, lowerNeedle string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
