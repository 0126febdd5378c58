package parsing

import (
	"strings"
)

// resultTitleSeparators are tried in order when splitting a search result title.
var resultTitleSeparators = []string{" - ", " – ", " — ", " | "}

// ResultTitle is the structured form of a profile search result title.
type ResultTitle struct {
	Name    string
	Title   string
	Company string
}

// ParseResultTitle splits a search result title of the form "Name - Title - Company"
// into its parts. A trailing "LinkedIn" segment is dropped. Missing parts are empty.
func ParseResultTitle(raw string) ResultTitle {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ResultTitle{}
	}

	parts := []string{raw}
	for _, sep := range resultTitleSeparators {
		var next []string
		for _, part := range parts {
			next = append(next, strings.Split(part, sep)...)
		}
		parts = next
	}

	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	if n := len(cleaned); n > 0 && strings.EqualFold(cleaned[n-1], "linkedin") {
		cleaned = cleaned[:n-1]
	}

	var rt ResultTitle
	if len(cleaned) > 0 {
		rt.Name = cleaned[0]
	}
	if len(cleaned) > 1 {
		rt.Title = cleaned[1]
	}
	if len(cleaned) > 2 {
		rt.Company = cleaned[2]
	}
	return rt
}
