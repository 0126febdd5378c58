package scoring

import (
	"strings"

	"github.com/jonathan/prospect-scorer/internal/features"
	"github.com/jonathan/prospect-scorer/internal/parsing"
)

// NewScorers returns the four factor scorers in Factor order.
func NewScorers(t Thresholds) []Scorer {
	return []Scorer{
		semanticScorer{keywordWeight: t.KeywordWeight},
		roleScorer{partialCap: t.PartialRoleCap},
		industryScorer{subIndustryScore: t.SubIndustryScore, partialCap: t.PartialIndustryCap},
		geoScorer{partialCap: t.PartialGeoCap},
	}
}

// semanticScorer computes weighted term coverage between the candidate tokens and the
// persona keywords plus ICP value props, pain points and trigger events.
//
// score = Σ wᵢ·coverageᵢ / Σ wᵢ, where coverageᵢ is the fraction of term i's tokens
// found in the candidate. A term is reported as matched only when fully covered.
type semanticScorer struct {
	keywordWeight float64
}

func (semanticScorer) Factor() Factor { return FactorSemantic }

func (s semanticScorer) Score(fs *features.FeatureSet) Result {
	if fs == nil || len(fs.SemanticTerms) == 0 || fs.Tokens.Len() == 0 {
		return Result{}
	}

	weighted, total := 0.0, 0.0
	var matched []string
	for _, term := range fs.SemanticTerms {
		w := 1.0
		if term.Source == features.SourceKeyword {
			w = s.keywordWeight
		}
		coverage := fs.Tokens.Coverage(term.Tokens)
		weighted += w * coverage
		total += w
		if coverage == 1 {
			matched = append(matched, term.Text)
		}
	}

	if total == 0 {
		return Result{}
	}
	return Result{Value: weighted / total, Matched: matched}
}

// roleScorer matches the inferred title against the persona titles. A title contained
// in the inferred title, or whose tokens all appear in it, scores 1.0; otherwise the
// token overlap fraction is scaled by partialCap. The best title wins; earlier titles
// win ties.
type roleScorer struct {
	partialCap float64
}

func (roleScorer) Factor() Factor { return FactorRole }

func (s roleScorer) Score(fs *features.FeatureSet) Result {
	if fs == nil || len(fs.TitleTokens) == 0 || len(fs.TargetTitles) == 0 {
		return Result{}
	}

	titleSet := make(parsing.TokenSet, len(fs.TitleTokens))
	titleSet.Add(fs.TitleTokens...)

	best := Result{}
	for _, target := range fs.TargetTitles {
		var value float64
		if containsPhrase(fs.TitleText, parsing.CanonicalText(target.Text)) {
			value = 1.0
		} else if coverage := titleSet.Coverage(target.Tokens); coverage == 1 {
			value = 1.0
		} else {
			value = coverage * s.partialCap
		}

		if value > best.Value {
			best = Result{Value: value, Matched: []string{target.Text}}
		}
		if best.Value == 1.0 {
			break
		}
	}
	return best
}

// industryScorer compares the company/title/snippet signal with the ICP industry and
// sub-industries. Exact industry (1.0) > sub-industry > partial overlap > 0.
type industryScorer struct {
	subIndustryScore float64
	partialCap       float64
}

func (industryScorer) Factor() Factor { return FactorIndustry }

func (s industryScorer) Score(fs *features.FeatureSet) Result {
	if fs == nil || fs.IndustrySignal.Len() == 0 {
		return Result{}
	}

	if len(fs.Industry.Tokens) > 0 && fs.IndustrySignal.Coverage(fs.Industry.Tokens) == 1 {
		return Result{Value: 1.0, Matched: []string{fs.Industry.Text}}
	}

	for _, sub := range fs.SubIndustries {
		if fs.IndustrySignal.Coverage(sub.Tokens) == 1 {
			return Result{Value: s.subIndustryScore, Matched: []string{sub.Text}}
		}
	}

	bestPartial := fs.IndustrySignal.Coverage(fs.Industry.Tokens)
	for _, sub := range fs.SubIndustries {
		if c := fs.IndustrySignal.Coverage(sub.Tokens); c > bestPartial {
			bestPartial = c
		}
	}
	return Result{Value: bestPartial * s.partialCap}
}

// geoScorer compares the inferred location with the geographic constraint implied by the
// ICP target locations and persona locations. No constraint yields a neutral 1.0.
type geoScorer struct {
	partialCap float64
}

func (geoScorer) Factor() Factor { return FactorGeo }

func (s geoScorer) Score(fs *features.FeatureSet) Result {
	if fs == nil || !fs.GeoConstraintSet {
		return Result{Value: 1.0}
	}
	if len(fs.LocationTokens) == 0 {
		return Result{}
	}

	location := strings.Join(fs.LocationTokens, " ")
	locationSet := make(parsing.TokenSet, len(fs.LocationTokens))
	locationSet.Add(fs.LocationTokens...)

	best := Result{}
	for _, constraint := range fs.GeoConstraints {
		var value float64
		target := strings.Join(constraint.Tokens, " ")
		if containsPhrase(location, target) || containsPhrase(target, location) {
			value = 1.0
		} else {
			value = locationSet.Coverage(constraint.Tokens) * s.partialCap
		}

		if value > best.Value {
			best = Result{Value: value, Matched: []string{constraint.Text}}
		}
		if best.Value == 1.0 {
			break
		}
	}
	return best
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments are expected in normalized, space-separated form.
func containsPhrase(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
