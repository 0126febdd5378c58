// Package features turns an (ICP, Persona, Candidate) triple into the typed features the
// factor scorers consume. Extraction is a pure function of its inputs.
package features

import (
	"strings"

	"github.com/jonathan/prospect-scorer/internal/parsing"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// TermSource identifies where a semantic term came from.
type TermSource string

// Semantic term sources
const (
	SourceKeyword      TermSource = "keyword"
	SourceValueProp    TermSource = "value_prop"
	SourcePainPoint    TermSource = "pain_point"
	SourceTriggerEvent TermSource = "trigger_event"
)

// Term is a target phrase reduced to content tokens.
type Term struct {
	Text   string // As written upstream; reported back in explanations
	Tokens []string
	Source TermSource
}

// FeatureSet holds everything the scorers need for one candidate.
type FeatureSet struct {
	CandidateURL string

	// Tokens is the normalized token set of the snippet plus inferred title.
	Tokens parsing.TokenSet

	// Role inputs
	Title        string // Inferred title, back-filled from the result title when missing
	TitleText    string // Canonical form of Title
	TitleTokens  []string
	TargetTitles []Term

	// Industry inputs
	Company        string
	IndustrySignal parsing.TokenSet
	Industry       Term
	SubIndustries  []Term

	// Semantic inputs, in keyword, value prop, pain point, trigger event order.
	SemanticTerms []Term

	// Geo inputs
	Location         string
	LocationText     string // Canonical form of Location
	LocationTokens   []string
	GeoConstraints   []Term
	GeoConstraintSet bool
}

// Extract builds the FeatureSet for one candidate. The persona must derive from the ICP;
// otherwise an ErrLineageMismatch error is returned. Empty snippets are not an error.
func Extract(icp *types.ICP, persona *types.Persona, candidate *types.Candidate) (*FeatureSet, error) {
	if icp == nil || persona == nil {
		return nil, types.InvalidArgument("icp and persona are required")
	}
	if candidate == nil {
		return nil, types.InvalidArgument("candidate is required")
	}
	if persona.ICPID != icp.ID {
		return nil, types.LineageMismatch("persona %q derives from icp %q, not %q", persona.ID, persona.ICPID, icp.ID)
	}

	title := types.Deref(candidate.InferredTitle)
	company := types.Deref(candidate.InferredCompany)
	if (title == "" || company == "") && candidate.ResultTitle != "" {
		parsed := parsing.ParseResultTitle(candidate.ResultTitle)
		if title == "" {
			title = parsed.Title
		}
		if company == "" {
			company = parsed.Company
		}
	}
	location := types.Deref(candidate.InferredLocation)
	snippet := parsing.StripHTML(candidate.ResultSnippet)

	fs := &FeatureSet{
		CandidateURL:   candidate.LinkedInURL,
		Tokens:         parsing.NewTokenSet(snippet, title),
		Title:          title,
		TitleText:      parsing.CanonicalText(title),
		TitleTokens:    parsing.Tokens(title),
		TargetTitles:   buildTerms(persona.Titles, "", parsing.Tokens),
		Company:        company,
		IndustrySignal: parsing.NewTokenSet(company, title, snippet),
		Industry:       newTerm(icp.Industry, "", parsing.Tokens),
		SubIndustries:  buildTerms(icp.SubIndustries, "", parsing.Tokens),
		Location:       location,
		LocationText:   parsing.CanonicalLocation(location),
		LocationTokens: parsing.LocationTokens(location),
	}

	fs.SemanticTerms = mergeTerms(
		buildTerms(persona.Keywords, SourceKeyword, parsing.Tokens),
		buildTerms(icp.ValueProps, SourceValueProp, parsing.Tokens),
		buildTerms(icp.PainPoints, SourcePainPoint, parsing.Tokens),
		buildTerms(icp.TriggerEvents, SourceTriggerEvent, parsing.Tokens),
	)

	fs.GeoConstraints = mergeTerms(
		buildTerms(icp.TargetLocations, "", parsing.LocationTokens),
		buildTerms(persona.Locations, "", parsing.LocationTokens),
	)
	fs.GeoConstraintSet = len(fs.GeoConstraints) > 0

	return fs, nil
}

func newTerm(text string, source TermSource, tokenize func(string) []string) Term {
	return Term{Text: text, Tokens: tokenize(text), Source: source}
}

// buildTerms converts phrases to terms, dropping phrases with no content tokens.
func buildTerms(texts []string, source TermSource, tokenize func(string) []string) []Term {
	terms := make([]Term, 0, len(texts))
	for _, text := range texts {
		term := newTerm(text, source, tokenize)
		if len(term.Tokens) == 0 {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// mergeTerms concatenates term lists, keeping the first term for each token sequence.
func mergeTerms(lists ...[]Term) []Term {
	seen := make(map[string]bool)
	var merged []Term
	for _, list := range lists {
		for _, term := range list {
			key := strings.Join(term.Tokens, " ")
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, term)
		}
	}
	return merged
}
