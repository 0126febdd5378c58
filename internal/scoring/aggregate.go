package scoring

import (
	"math"
	"sort"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// ContributionTolerance bounds the difference between the final score and the sum of the
// per-factor contributions.
const ContributionTolerance = 1e-9

// Aggregator combines factor scores into a final score with a fixed convex weighting.
type Aggregator struct {
	weights     Weights
	maxKeywords int
}

// NewAggregator validates and normalizes weights. maxKeywords caps the explanation keyword
// list (0 means unlimited).
func NewAggregator(weights Weights, maxKeywords int) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if maxKeywords < 0 {
		return nil, types.InvalidArgument("max matched keywords must be non-negative, got %d", maxKeywords)
	}
	return &Aggregator{weights: weights.Normalized(), maxKeywords: maxKeywords}, nil
}

// Weights returns the normalized weights in use.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// Aggregate returns the final score and the explainability record for a score tuple.
// Every factor score must lie in [0,1]; anything else is an ErrInvariantViolation.
func (a *Aggregator) Aggregate(tuple Tuple, matches Matches) (float64, types.Explainability, error) {
	for _, f := range Factors {
		v := tuple[f]
		if math.IsNaN(v) || v < 0 || v > 1 {
			return 0, types.Explainability{}, types.InvariantViolation("%s score %v outside [0,1]", f, v)
		}
	}

	contributions := make(map[string]float64, NumFactors)
	final := 0.0
	for _, f := range Factors {
		c := a.weights.Of(f) * tuple[f]
		contributions[f.String()] = c
		final += c
	}

	// Normalized weights may sum to 1 plus a few ulps.
	if final > 1 {
		if final-1 > ContributionTolerance {
			return 0, types.Explainability{}, types.InvariantViolation("final score %v exceeds 1", final)
		}
		final = 1
	}

	return final, types.Explainability{
		KeywordsMatched:      a.mergeMatches(matches),
		FeatureContributions: contributions,
	}, nil
}

// mergeMatches unions the matched terms of every factor, deduplicating case-insensitively.
// The result is sorted so repeated runs produce identical output.
func (a *Aggregator) mergeMatches(matches Matches) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0)
	for _, f := range Factors {
		for _, term := range matches[f] {
			key := foldKey(term)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, term)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		ki, kj := foldKey(merged[i]), foldKey(merged[j])
		if ki != kj {
			return ki < kj
		}
		return merged[i] < merged[j]
	})
	if a.maxKeywords > 0 && len(merged) > a.maxKeywords {
		merged = merged[:a.maxKeywords]
	}
	return merged
}
