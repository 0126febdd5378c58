package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"case and punctuation", "VP, Sales & Marketing!", "vp sales marketing"},
		{"keeps plus and hash", "C++ / C# developer", "c++ c# developer"},
		{"strips diacritics", "São Paulo, Brasil", "sao paulo brasil"},
		{"collapses whitespace", "  head \t of\n growth ", "head of growth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestTokens_StopwordsAndAliases(t *testing.T) {
	assert.Equal(t, []string{"vp", "sales"}, Tokens("Vice President of Sales"))
	assert.Equal(t, []string{"vp", "sales"}, Tokens("VP of Sales"))
	assert.Equal(t, []string{"svp", "sales"}, Tokens("Senior Vice President, Sales"))
	assert.Equal(t, []string{"senior", "manager"}, Tokens("Sr. Mgr"))
	assert.Equal(t, []string{"saas"}, Tokens("Software as a Service"))
}

func TestTokens_Deduplicates(t *testing.T) {
	assert.Equal(t, []string{"sales", "leader"}, Tokens("sales SALES leader Sales"))
}

func TestTokens_Empty(t *testing.T) {
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens("the of and"))
	assert.Empty(t, Tokens("+ # ++"))
}

func TestLocationTokens_Aliases(t *testing.T) {
	assert.Equal(t, []string{"united", "states"}, LocationTokens("USA"))
	assert.Equal(t, []string{"united", "states"}, LocationTokens("U.S."))
	assert.Equal(t, []string{"new", "york"}, LocationTokens("NYC"))
	assert.Equal(t, []string{"san", "francisco", "bay", "area"}, LocationTokens("Bay Area"))
}

func TestCanonicalLocation_DoesNotApplyToGeneralText(t *testing.T) {
	// "us" is only a country alias in location text.
	assert.Equal(t, []string{"contact", "us"}, Tokens("contact us"))
	assert.Equal(t, "austin texas united states", CanonicalLocation("Austin, Texas, US"))
}

func TestTokenSet_Coverage(t *testing.T) {
	set := NewTokenSet("Scaling revenue operations", "pipeline")

	assert.InDelta(t, 1.0, set.Coverage([]string{"revenue", "operations"}), 1e-12)
	assert.InDelta(t, 0.5, set.Coverage([]string{"revenue", "churn"}), 1e-12)
	assert.Equal(t, 0.0, set.Coverage(nil))
	assert.Equal(t, 0.0, TokenSet{}.Coverage([]string{"revenue"}))
}

func TestTokenSet_Len(t *testing.T) {
	set := NewTokenSet("zeta alpha mid", "alpha")
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("mid"))
}
