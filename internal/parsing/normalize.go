// Package parsing turns free-text profile fields into normalized tokens.
package parsing

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// titleNormalizations maps common title and industry phrase variants to canonical forms.
// Keys and values are in normalized (lower-case, space-separated) form.
var titleNormalizations = map[string]string{
	"vice president":            "vp",
	"senior vice president":     "svp",
	"executive vice president":  "evp",
	"sr":                        "senior",
	"jr":                        "junior",
	"mgr":                       "manager",
	"dir":                       "director",
	"chief executive officer":   "ceo",
	"chief technology officer":  "cto",
	"chief revenue officer":     "cro",
	"chief marketing officer":   "cmo",
	"chief financial officer":   "cfo",
	"chief operating officer":   "coo",
	"chief information officer": "cio",
	"software as a service":     "saas",
	"biz dev":                   "business development",
	"bizdev":                    "business development",
}

// locationNormalizations maps location variants to canonical forms.
// Applied only to location text, where tokens like "us" are unambiguous.
var locationNormalizations = map[string]string{
	"usa":                      "united states",
	"us":                       "united states",
	"u s a":                    "united states",
	"u s":                      "united states",
	"united states of america": "united states",
	"uk":                       "united kingdom",
	"u k":                      "united kingdom",
	"great britain":            "united kingdom",
	"nyc":                      "new york",
	"new york city":            "new york",
	"sf":                       "san francisco",
	"bay area":                 "san francisco bay area",
	"uae":                      "united arab emirates",
}

// stopwords are dropped from token sets.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "and": true, "or": true,
	"for": true, "to": true, "in": true, "on": true, "at": true, "by": true,
	"with": true, "from": true, "as": true, "is": true, "are": true, "be": true,
	"our": true, "your": true, "their": true, "we": true, "i": true, "it": true,
	"this": true, "that": true, "into": true, "via": true,
}

type phraseRule struct {
	from []string
	to   string
}

var (
	titleRules    = compileRules(titleNormalizations)
	locationRules = compileRules(locationNormalizations)
)

// compileRules orders rules longest-first so that "senior vice president" wins over
// "vice president".
func compileRules(m map[string]string) []phraseRule {
	rules := make([]phraseRule, 0, len(m))
	for from, to := range m {
		rules = append(rules, phraseRule{from: strings.Fields(from), to: to})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].from) != len(rules[j].from) {
			return len(rules[i].from) > len(rules[j].from)
		}
		return strings.Join(rules[i].from, " ") < strings.Join(rules[j].from, " ")
	})
	return rules
}

// NormalizeText case-folds s, strips diacritics and punctuation, and collapses whitespace.
// '+' and '#' are kept inside words so that "C++" and "C#" survive.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == '+' || r == '#':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// applyRules rewrites phrases in a single left-to-right pass; replacements are not rescanned.
func applyRules(normalized string, rules []phraseRule) string {
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return ""
	}

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		matched := false
		for _, rule := range rules {
			if hasPhrase(words[i:], rule.from) {
				out = append(out, rule.to)
				i += len(rule.from)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, words[i])
			i++
		}
	}
	return strings.Join(out, " ")
}

func hasPhrase(words, phrase []string) bool {
	if len(phrase) > len(words) {
		return false
	}
	for i, w := range phrase {
		if words[i] != w {
			return false
		}
	}
	return true
}

// CanonicalText normalizes s and applies title/industry phrase canonicalization.
func CanonicalText(s string) string {
	return applyRules(NormalizeText(s), titleRules)
}

// CanonicalLocation normalizes a location string and applies location aliases.
func CanonicalLocation(s string) string {
	return applyRules(NormalizeText(s), locationRules)
}

// Tokens returns the content tokens of s in order of first appearance: canonicalized,
// stopwords removed, deduplicated.
func Tokens(s string) []string {
	return tokensOf(CanonicalText(s))
}

// LocationTokens returns the content tokens of a location string.
func LocationTokens(s string) []string {
	return tokensOf(CanonicalLocation(s))
}

func tokensOf(canonical string) []string {
	if canonical == "" {
		return nil
	}
	fields := strings.Fields(canonical)
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.Trim(field, "+#") == "" {
			continue
		}
		if stopwords[field] || seen[field] {
			continue
		}
		seen[field] = true
		tokens = append(tokens, field)
	}
	return tokens
}

// TokenSet is a set of normalized tokens.
type TokenSet map[string]struct{}

// NewTokenSet builds a TokenSet from the tokens of every text.
func NewTokenSet(texts ...string) TokenSet {
	set := make(TokenSet)
	for _, text := range texts {
		set.Add(Tokens(text)...)
	}
	return set
}

// Add inserts tokens into the set.
func (s TokenSet) Add(tokens ...string) {
	for _, t := range tokens {
		s[t] = struct{}{}
	}
}

// Contains reports whether token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the number of tokens.
func (s TokenSet) Len() int {
	return len(s)
}

// Coverage returns the fraction of tokens present in the set. Empty input covers nothing.
func (s TokenSet) Coverage(tokens []string) float64 {
	if len(tokens) == 0 || len(s) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if s.Contains(t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
