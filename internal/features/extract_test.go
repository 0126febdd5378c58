package features

import (
	"testing"

	"github.com/jonathan/prospect-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testICP() *types.ICP {
	return &types.ICP{
		ID:              "icp_1",
		Industry:        "SaaS",
		SubIndustries:   []string{"Revenue Intelligence", "Sales Enablement"},
		ValueProps:      []string{"forecast accuracy"},
		PainPoints:      []string{"pipeline visibility", "Forecast Accuracy"},
		TriggerEvents:   []string{"new funding round"},
		TargetLocations: []string{"Austin, TX"},
	}
}

func testPersona() *types.Persona {
	return &types.Persona{
		ID:        "persona_1",
		ICPID:     "icp_1",
		Titles:    []string{"VP Sales", "Head of Revenue"},
		Keywords:  []string{"quota", "pipeline visibility"},
		Locations: []string{"USA"},
	}
}

func TestExtract_LineageMismatch(t *testing.T) {
	persona := testPersona()
	persona.ICPID = "icp_other"

	fs, err := Extract(testICP(), persona, &types.Candidate{LinkedInURL: "https://linkedin.com/in/a"})
	require.Error(t, err)
	assert.Nil(t, fs)
	assert.ErrorIs(t, err, types.ErrLineageMismatch)
}

func TestExtract_NilInputs(t *testing.T) {
	_, err := Extract(nil, testPersona(), &types.Candidate{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = Extract(testICP(), testPersona(), nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestExtract_EmptySnippet(t *testing.T) {
	fs, err := Extract(testICP(), testPersona(), &types.Candidate{LinkedInURL: "https://linkedin.com/in/a"})
	require.NoError(t, err)

	assert.Equal(t, 0, fs.Tokens.Len())
	assert.Empty(t, fs.Title)
	assert.Empty(t, fs.TitleTokens)
	assert.Empty(t, fs.LocationTokens)
	assert.Equal(t, "https://linkedin.com/in/a", fs.CandidateURL)
}

func TestExtract_Tokens(t *testing.T) {
	candidate := &types.Candidate{
		LinkedInURL:   "https://linkedin.com/in/a",
		InferredTitle: types.StringPtr("Vice President of Sales"),
		ResultSnippet: "Owns <b>quota</b> and Pipeline Visibility at Acme.",
	}

	fs, err := Extract(testICP(), testPersona(), candidate)
	require.NoError(t, err)

	for _, token := range []string{"vp", "sales", "quota", "pipeline", "visibility", "acme", "owns"} {
		assert.True(t, fs.Tokens.Contains(token), "expected token %q", token)
	}
	assert.False(t, fs.Tokens.Contains("of"))
	assert.Equal(t, []string{"vp", "sales"}, fs.TitleTokens)
	assert.Equal(t, "vp of sales", fs.TitleText)
}

func TestExtract_BackfillsFromResultTitle(t *testing.T) {
	candidate := &types.Candidate{
		LinkedInURL: "https://linkedin.com/in/b",
		ResultTitle: "Jane Doe - Head of Revenue - Acme Analytics | LinkedIn",
	}

	fs, err := Extract(testICP(), testPersona(), candidate)
	require.NoError(t, err)

	assert.Equal(t, "Head of Revenue", fs.Title)
	assert.Equal(t, "Acme Analytics", fs.Company)
	assert.True(t, fs.IndustrySignal.Contains("analytics"))
	// Extraction never mutates the candidate.
	assert.Nil(t, candidate.InferredTitle)
	assert.Nil(t, candidate.InferredCompany)
}

func TestExtract_SemanticTermsDeduplicated(t *testing.T) {
	fs, err := Extract(testICP(), testPersona(), &types.Candidate{LinkedInURL: "u"})
	require.NoError(t, err)

	var texts []string
	for _, term := range fs.SemanticTerms {
		texts = append(texts, term.Text)
	}
	// "pipeline visibility" appears as a keyword and a pain point; the keyword wins.
	// "Forecast Accuracy" duplicates the value prop.
	assert.Equal(t, []string{"quota", "pipeline visibility", "forecast accuracy", "new funding round"}, texts)
	assert.Equal(t, SourceKeyword, fs.SemanticTerms[1].Source)
	assert.Equal(t, []string{"new", "funding", "round"}, fs.SemanticTerms[3].Tokens)
}

func TestExtract_GeoConstraints(t *testing.T) {
	fs, err := Extract(testICP(), testPersona(), &types.Candidate{
		LinkedInURL:      "u",
		InferredLocation: types.StringPtr("Austin, Texas, United States"),
	})
	require.NoError(t, err)

	assert.True(t, fs.GeoConstraintSet)
	require.Len(t, fs.GeoConstraints, 2)
	assert.Equal(t, []string{"austin", "tx"}, fs.GeoConstraints[0].Tokens)
	assert.Equal(t, []string{"united", "states"}, fs.GeoConstraints[1].Tokens)
	assert.Equal(t, "austin texas united states", fs.LocationText)
}

func TestExtract_NoGeoConstraint(t *testing.T) {
	icp := testICP()
	icp.TargetLocations = nil
	persona := testPersona()
	persona.Locations = []string{"  ", ""}

	fs, err := Extract(icp, persona, &types.Candidate{LinkedInURL: "u"})
	require.NoError(t, err)

	assert.False(t, fs.GeoConstraintSet)
	assert.Empty(t, fs.GeoConstraints)
}

func TestExtract_IndustryTerms(t *testing.T) {
	fs, err := Extract(testICP(), testPersona(), &types.Candidate{LinkedInURL: "u"})
	require.NoError(t, err)

	assert.Equal(t, []string{"saas"}, fs.Industry.Tokens)
	require.Len(t, fs.SubIndustries, 2)
	assert.Equal(t, "Revenue Intelligence", fs.SubIndustries[0].Text)
}
