package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jonathan/prospect-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a, err := NewAggregator(DefaultWeights(), 0)
	require.NoError(t, err)
	return a
}

func sumContributions(exp types.Explainability) float64 {
	sum := 0.0
	for _, c := range exp.FeatureContributions {
		sum += c
	}
	return sum
}

func TestAggregate_DefaultWeights(t *testing.T) {
	a := defaultAggregator(t)

	final, exp, err := a.Aggregate(Tuple{1.0, 0.5, 0.0, 1.0}, Matches{})
	require.NoError(t, err)

	expected := 0.40*1.0 + 0.25*0.5 + 0.20*0.0 + 0.15*1.0
	assert.InDelta(t, expected, final, 1e-12)
	assert.InDelta(t, 0.40, exp.FeatureContributions["semantic"], 1e-12)
	assert.InDelta(t, 0.125, exp.FeatureContributions["role"], 1e-12)
	assert.Equal(t, 0.0, exp.FeatureContributions["industry"])
	assert.InDelta(t, 0.15, exp.FeatureContributions["geo"], 1e-12)
	assert.Len(t, exp.FeatureContributions, int(NumFactors))
}

func TestAggregate_RandomTuplesStayInRangeAndSum(t *testing.T) {
	a := defaultAggregator(t)
	rng := rand.New(rand.NewSource(42))

	corners := []Tuple{{0, 0, 0, 0}, {1, 1, 1, 1}, {1, 0, 1, 0}, {0, 1, 0, 1}}
	for i := 0; i < 1000; i++ {
		corners = append(corners, Tuple{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()})
	}

	for _, tuple := range corners {
		final, exp, err := a.Aggregate(tuple, Matches{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, final, 0.0)
		assert.LessOrEqual(t, final, 1.0)
		assert.InDelta(t, final, sumContributions(exp), ContributionTolerance)
	}
}

func TestAggregate_MonotoneInEachFactor(t *testing.T) {
	a := defaultAggregator(t)
	base := Tuple{0.3, 0.3, 0.3, 0.3}
	baseFinal, _, err := a.Aggregate(base, Matches{})
	require.NoError(t, err)

	for _, f := range Factors {
		raised := base
		raised[f] = 0.9
		final, _, err := a.Aggregate(raised, Matches{})
		require.NoError(t, err)
		assert.Greater(t, final, baseFinal, f.String())
	}
}

func TestAggregate_OutOfRangeIsInvariantViolation(t *testing.T) {
	a := defaultAggregator(t)

	for _, tuple := range []Tuple{
		{1.5, 0, 0, 0},
		{0, -0.1, 0, 0},
		{0, 0, math.NaN(), 0},
		{0, 0, 0, math.Inf(1)},
	} {
		_, _, err := a.Aggregate(tuple, Matches{})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvariantViolation)
	}
}

func TestAggregate_MatchedKeywordsUnionDeduplicated(t *testing.T) {
	a := defaultAggregator(t)

	var matches Matches
	matches[FactorSemantic] = []string{"quota", "Pipeline", "quota"}
	matches[FactorRole] = []string{"VP Sales"}
	matches[FactorIndustry] = []string{"pipeline", "SaaS"}
	matches[FactorGeo] = nil

	_, exp, err := a.Aggregate(Tuple{0.5, 1, 1, 1}, matches)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pipeline", "quota", "SaaS", "VP Sales"}, exp.KeywordsMatched)
}

func TestAggregate_MaxKeywords(t *testing.T) {
	a, err := NewAggregator(DefaultWeights(), 2)
	require.NoError(t, err)

	var matches Matches
	matches[FactorSemantic] = []string{"c", "a", "b"}

	_, exp, err := a.Aggregate(Tuple{}, matches)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, exp.KeywordsMatched)
}

func TestAggregate_NoMatchesIsEmptySlice(t *testing.T) {
	a := defaultAggregator(t)

	_, exp, err := a.Aggregate(Tuple{}, Matches{})
	require.NoError(t, err)
	assert.NotNil(t, exp.KeywordsMatched)
	assert.Empty(t, exp.KeywordsMatched)
}

func TestNewAggregator_NormalizesWeights(t *testing.T) {
	a, err := NewAggregator(Weights{Semantic: 0.4000004, Role: 0.25, Industry: 0.2, Geo: 0.15}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a.Weights().Sum(), 1e-15)

	final, exp, err := a.Aggregate(Tuple{1, 1, 1, 1}, Matches{})
	require.NoError(t, err)
	assert.LessOrEqual(t, final, 1.0)
	assert.InDelta(t, final, sumContributions(exp), ContributionTolerance)
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"default", DefaultWeights(), false},
		{"original weighting", Weights{Semantic: 0.55, Role: 0.20, Industry: 0.15, Geo: 0.10}, false},
		{"zero weight", Weights{Semantic: 0.6, Role: 0.25, Industry: 0.15, Geo: 0}, true},
		{"negative weight", Weights{Semantic: 0.7, Role: 0.25, Industry: 0.2, Geo: -0.15}, true},
		{"sum too high", Weights{Semantic: 0.5, Role: 0.25, Industry: 0.2, Geo: 0.15}, true},
		{"nan", Weights{Semantic: math.NaN(), Role: 0.25, Industry: 0.2, Geo: 0.15}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.PartialIndustryCap = 0.7 // not below sub-industry score
	assert.ErrorIs(t, bad.Validate(), types.ErrInvalidArgument)

	bad = DefaultThresholds()
	bad.SubIndustryScore = 1.0
	assert.ErrorIs(t, bad.Validate(), types.ErrInvalidArgument)

	bad = DefaultThresholds()
	bad.KeywordWeight = 0
	assert.ErrorIs(t, bad.Validate(), types.ErrInvalidArgument)

	bad = DefaultThresholds()
	bad.MaxMatchedKeywords = -1
	assert.ErrorIs(t, bad.Validate(), types.ErrInvalidArgument)
}

func TestFactor_String(t *testing.T) {
	assert.Equal(t, "semantic", FactorSemantic.String())
	assert.Equal(t, "geo", FactorGeo.String())
	assert.Equal(t, "unknown", NumFactors.String())
}
