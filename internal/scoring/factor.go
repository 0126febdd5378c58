// Package scoring computes per-factor relevance scores for a candidate and combines them
// into an explained final score.
package scoring

import "github.com/jonathan/prospect-scorer/internal/features"

// Factor identifies one of the scoring dimensions.
type Factor int

// The closed set of factors. NumFactors must stay last.
const (
	FactorSemantic Factor = iota
	FactorRole
	FactorIndustry
	FactorGeo
	NumFactors
)

var factorNames = [NumFactors]string{
	FactorSemantic: "semantic",
	FactorRole:     "role",
	FactorIndustry: "industry",
	FactorGeo:      "geo",
}

// Factors lists every factor in aggregation order.
var Factors = [NumFactors]Factor{FactorSemantic, FactorRole, FactorIndustry, FactorGeo}

func (f Factor) String() string {
	if f < 0 || f >= NumFactors {
		return "unknown"
	}
	return factorNames[f]
}

// Tuple holds one score per factor, indexed by Factor.
type Tuple [NumFactors]float64

// Matches holds the matched terms reported by each factor scorer.
type Matches [NumFactors][]string

// Result is the output of a single factor scorer.
type Result struct {
	Value   float64
	Matched []string
}

// Scorer maps extracted features to a bounded score in [0,1] for one factor.
// Implementations must be total: they never fail and never panic on any FeatureSet
// produced by features.Extract.
type Scorer interface {
	Factor() Factor
	Score(fs *features.FeatureSet) Result
}
