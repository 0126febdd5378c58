package scoring

import (
	"math"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// weightSumTolerance is how far configured weights may drift from summing to 1 before
// they are rejected. Accepted weights are normalized to sum to 1.
const weightSumTolerance = 1e-6

// Weights are the factor weights of the convex combination producing the final score.
type Weights struct {
	Semantic float64 `json:"semantic" mapstructure:"semantic"`
	Role     float64 `json:"role" mapstructure:"role"`
	Industry float64 `json:"industry" mapstructure:"industry"`
	Geo      float64 `json:"geo" mapstructure:"geo"`
}

// DefaultWeights returns the default weighting.
//
// final = 0.40*semantic + 0.25*role + 0.20*industry + 0.15*geo
func DefaultWeights() Weights {
	return Weights{
		Semantic: 0.40,
		Role:     0.25,
		Industry: 0.20,
		Geo:      0.15,
	}
}

// Of returns the weight of factor f.
func (w Weights) Of(f Factor) float64 {
	switch f {
	case FactorSemantic:
		return w.Semantic
	case FactorRole:
		return w.Role
	case FactorIndustry:
		return w.Industry
	case FactorGeo:
		return w.Geo
	default:
		return 0
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	sum := 0.0
	for _, f := range Factors {
		sum += w.Of(f)
	}
	return sum
}

// Validate checks that every weight is positive and that the weights sum to 1.
func (w Weights) Validate() error {
	for _, f := range Factors {
		v := w.Of(f)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return types.InvalidArgument("weight %s must be > 0, got %v", f, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return types.InvalidArgument("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Normalized returns the weights rescaled to sum to 1.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{
		Semantic: w.Semantic / sum,
		Role:     w.Role / sum,
		Industry: w.Industry / sum,
		Geo:      w.Geo / sum,
	}
}

// Thresholds tune the individual factor scorers.
type Thresholds struct {
	// KeywordWeight is the weight of a persona keyword relative to an ICP term (weight 1)
	// in the semantic score.
	KeywordWeight float64 `json:"keyword_weight" mapstructure:"keyword_weight"`
	// PartialRoleCap scales partial title token overlap.
	PartialRoleCap float64 `json:"partial_role_cap" mapstructure:"partial_role_cap"`
	// SubIndustryScore is awarded when only a sub-industry matches.
	SubIndustryScore float64 `json:"sub_industry_score" mapstructure:"sub_industry_score"`
	// PartialIndustryCap scales partial industry token overlap.
	PartialIndustryCap float64 `json:"partial_industry_cap" mapstructure:"partial_industry_cap"`
	// PartialGeoCap scales partial location token overlap.
	PartialGeoCap float64 `json:"partial_geo_cap" mapstructure:"partial_geo_cap"`
	// MaxMatchedKeywords caps the explanation keyword list; 0 means unlimited.
	MaxMatchedKeywords int `json:"max_matched_keywords" mapstructure:"max_matched_keywords"`
}

// DefaultThresholds returns the default scorer thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		KeywordWeight:      2.0,
		PartialRoleCap:     0.8,
		SubIndustryScore:   0.6,
		PartialIndustryCap: 0.3,
		PartialGeoCap:      0.5,
		MaxMatchedKeywords: 0,
	}
}

// Validate checks threshold ranges. The industry thresholds must keep
// exact industry (1.0) > sub-industry > partial overlap.
func (t Thresholds) Validate() error {
	if !(t.KeywordWeight > 0) {
		return types.InvalidArgument("keyword_weight must be > 0, got %v", t.KeywordWeight)
	}
	if !inUnitOpenClosed(t.PartialRoleCap) || t.PartialRoleCap >= 1 {
		return types.InvalidArgument("partial_role_cap must be in (0,1), got %v", t.PartialRoleCap)
	}
	if !inUnitOpenClosed(t.SubIndustryScore) || t.SubIndustryScore >= 1 {
		return types.InvalidArgument("sub_industry_score must be in (0,1), got %v", t.SubIndustryScore)
	}
	if !inUnitOpenClosed(t.PartialIndustryCap) || t.PartialIndustryCap >= t.SubIndustryScore {
		return types.InvalidArgument("partial_industry_cap must be in (0, sub_industry_score), got %v", t.PartialIndustryCap)
	}
	if !inUnitOpenClosed(t.PartialGeoCap) || t.PartialGeoCap >= 1 {
		return types.InvalidArgument("partial_geo_cap must be in (0,1), got %v", t.PartialGeoCap)
	}
	if t.MaxMatchedKeywords < 0 {
		return types.InvalidArgument("max_matched_keywords must be non-negative, got %d", t.MaxMatchedKeywords)
	}
	return nil
}

func inUnitOpenClosed(v float64) bool {
	return v > 0 && v <= 1
}

// Config is the complete scoring configuration. It is passed explicitly to the engine so
// that scoring runs are reproducible.
type Config struct {
	Weights    Weights    `json:"weights" mapstructure:"weights"`
	Thresholds Thresholds `json:"thresholds" mapstructure:"thresholds"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
	}
}

// Validate validates weights and thresholds.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	return c.Thresholds.Validate()
}
