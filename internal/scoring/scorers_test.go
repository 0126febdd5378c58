package scoring

import (
	"testing"

	"github.com/jonathan/prospect-scorer/internal/features"
	"github.com/jonathan/prospect-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testICP() *types.ICP {
	return &types.ICP{
		ID:            "icp_1",
		Industry:      "SaaS",
		SubIndustries: []string{"Revenue Intelligence"},
		ValueProps:    []string{"forecast accuracy"},
		PainPoints:    []string{"pipeline visibility"},
		TriggerEvents: []string{"new funding round"},
	}
}

func testPersona() *types.Persona {
	return &types.Persona{
		ID:       "persona_1",
		ICPID:    "icp_1",
		Titles:   []string{"VP Sales", "Head of Revenue"},
		Keywords: []string{"quota", "revenue operations"},
	}
}

func extract(t *testing.T, icp *types.ICP, persona *types.Persona, candidate *types.Candidate) *features.FeatureSet {
	t.Helper()
	if candidate.LinkedInURL == "" {
		candidate.LinkedInURL = "https://linkedin.com/in/test"
	}
	fs, err := features.Extract(icp, persona, candidate)
	require.NoError(t, err)
	return fs
}

func TestSemanticScorer_FullOverlap(t *testing.T) {
	fs := extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Quota carrier in revenue operations. Improved forecast accuracy and pipeline visibility after a new funding round.",
	})

	result := semanticScorer{keywordWeight: 2}.Score(fs)

	assert.Equal(t, 1.0, result.Value)
	assert.ElementsMatch(t, []string{"quota", "revenue operations", "forecast accuracy", "pipeline visibility", "new funding round"}, result.Matched)
}

func TestSemanticScorer_PartialOverlap(t *testing.T) {
	fs := extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Quota-carrying operations leader",
	})

	result := semanticScorer{keywordWeight: 2}.Score(fs)

	// quota: 2*1, revenue operations: 2*0.5, three ICP terms: 0 -> 3 / 7
	assert.InDelta(t, 3.0/7.0, result.Value, 1e-12)
	assert.Equal(t, []string{"quota"}, result.Matched)
}

func TestSemanticScorer_CaseInsensitive(t *testing.T) {
	persona := testPersona()
	persona.Keywords = []string{"QUOTA", "Revenue Operations"}
	upper := semanticScorer{keywordWeight: 2}.Score(extract(t, testICP(), persona, &types.Candidate{ResultSnippet: "quota revenue operations"}))
	lower := semanticScorer{keywordWeight: 2}.Score(extract(t, testICP(), testPersona(), &types.Candidate{ResultSnippet: "QUOTA REVENUE OPERATIONS"}))

	assert.Equal(t, upper.Value, lower.Value)
	assert.Greater(t, upper.Value, 0.0)
}

func TestSemanticScorer_EmptySides(t *testing.T) {
	empty := semanticScorer{keywordWeight: 2}.Score(extract(t, testICP(), testPersona(), &types.Candidate{}))
	assert.Equal(t, 0.0, empty.Value)
	assert.Empty(t, empty.Matched)

	icp := &types.ICP{ID: "icp_1", Industry: "SaaS"}
	persona := &types.Persona{ID: "persona_1", ICPID: "icp_1"}
	noTerms := semanticScorer{keywordWeight: 2}.Score(extract(t, icp, persona, &types.Candidate{ResultSnippet: "quota"}))
	assert.Equal(t, 0.0, noTerms.Value)
}

func TestRoleScorer(t *testing.T) {
	tests := []struct {
		name        string
		title       *string
		expected    float64
		wantMatched []string
	}{
		{"exact match", types.StringPtr("VP Sales"), 1.0, []string{"VP Sales"}},
		{"case-insensitive exact", types.StringPtr("vp sales"), 1.0, []string{"VP Sales"}},
		{"stopword variant", types.StringPtr("VP of Sales"), 1.0, []string{"VP Sales"}},
		{"alias variant", types.StringPtr("Vice President, Sales"), 1.0, []string{"VP Sales"}},
		{"contains title", types.StringPtr("Regional VP Sales, EMEA"), 1.0, []string{"VP Sales"}},
		{"partial overlap", types.StringPtr("Sales Manager"), 0.4, []string{"VP Sales"}},
		{"second title", types.StringPtr("Head of Revenue"), 1.0, []string{"Head of Revenue"}},
		{"no overlap", types.StringPtr("Software Engineer"), 0.0, nil},
		{"absent title", nil, 0.0, nil},
		{"blank title", types.StringPtr("  "), 0.0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := extract(t, testICP(), testPersona(), &types.Candidate{InferredTitle: tt.title})
			result := roleScorer{partialCap: 0.8}.Score(fs)
			assert.InDelta(t, tt.expected, result.Value, 1e-12)
			assert.Equal(t, tt.wantMatched, result.Matched)
		})
	}
}

func TestRoleScorer_NoPersonaTitles(t *testing.T) {
	persona := testPersona()
	persona.Titles = nil
	fs := extract(t, testICP(), persona, &types.Candidate{InferredTitle: types.StringPtr("VP Sales")})

	result := roleScorer{partialCap: 0.8}.Score(fs)
	assert.Equal(t, 0.0, result.Value)
	assert.Empty(t, result.Matched)
}

func TestIndustryScorer_Ordering(t *testing.T) {
	scorer := industryScorer{subIndustryScore: 0.6, partialCap: 0.3}

	exact := scorer.Score(extract(t, testICP(), testPersona(), &types.Candidate{
		InferredCompany: types.StringPtr("Acme SaaS"),
	}))
	sub := scorer.Score(extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Building revenue intelligence tools",
	}))
	partial := scorer.Score(extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Revenue leader",
	}))
	none := scorer.Score(extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Hospital administrator",
	}))

	assert.Equal(t, 1.0, exact.Value)
	assert.Equal(t, []string{"SaaS"}, exact.Matched)
	assert.Equal(t, 0.6, sub.Value)
	assert.Equal(t, []string{"Revenue Intelligence"}, sub.Matched)
	assert.InDelta(t, 0.15, partial.Value, 1e-12)
	assert.Empty(t, partial.Matched)
	assert.Equal(t, 0.0, none.Value)

	assert.Greater(t, exact.Value, sub.Value)
	assert.Greater(t, sub.Value, partial.Value)
	assert.Greater(t, partial.Value, none.Value)
}

func TestIndustryScorer_ExactBeatsSubIndustry(t *testing.T) {
	fs := extract(t, testICP(), testPersona(), &types.Candidate{
		ResultSnippet: "Revenue intelligence for software as a service companies",
	})

	result := industryScorer{subIndustryScore: 0.6, partialCap: 0.3}.Score(fs)
	assert.Equal(t, 1.0, result.Value)
	assert.Equal(t, []string{"SaaS"}, result.Matched)
}

func TestGeoScorer_NoConstraintIsNeutral(t *testing.T) {
	for _, location := range []*string{nil, types.StringPtr(""), types.StringPtr("Denver, CO"), types.StringPtr("???")} {
		fs := extract(t, testICP(), testPersona(), &types.Candidate{InferredLocation: location})
		result := geoScorer{partialCap: 0.5}.Score(fs)
		assert.Equal(t, 1.0, result.Value)
		assert.Empty(t, result.Matched)
	}
}

func TestGeoScorer_WithConstraint(t *testing.T) {
	icp := testICP()
	icp.TargetLocations = []string{"Austin, TX", "United States"}
	scorer := geoScorer{partialCap: 0.5}

	tests := []struct {
		name     string
		location *string
		expected float64
	}{
		{"missing location", nil, 0.0},
		{"exact city", types.StringPtr("Austin, TX"), 1.0},
		{"country alias", types.StringPtr("Denver, CO, USA"), 1.0},
		{"location inside constraint", types.StringPtr("Austin"), 1.0},
		{"partial tokens", types.StringPtr("Austin, Minnesota"), 0.25},
		{"unrelated", types.StringPtr("Berlin, Germany"), 0.0},
		{"unrecognized format", types.StringPtr("@@ remote // ##"), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := extract(t, icp, testPersona(), &types.Candidate{InferredLocation: tt.location})
			result := scorer.Score(fs)
			assert.InDelta(t, tt.expected, result.Value, 1e-12)
		})
	}
}

func TestScorers_NilFeatureSet(t *testing.T) {
	for _, scorer := range NewScorers(DefaultThresholds()) {
		result := scorer.Score(nil)
		assert.GreaterOrEqual(t, result.Value, 0.0, scorer.Factor().String())
		assert.LessOrEqual(t, result.Value, 1.0, scorer.Factor().String())
	}
}

func TestNewScorers_FactorOrder(t *testing.T) {
	scorers := NewScorers(DefaultThresholds())
	require.Len(t, scorers, int(NumFactors))
	for i, scorer := range scorers {
		assert.Equal(t, Factors[i], scorer.Factor())
	}
}
