package parsing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the text content of a search snippet that may carry HTML
// highlighting such as <b>...</b> or entities. Plain text is returned unchanged
// apart from whitespace cleanup.
func StripHTML(snippet string) string {
	if !strings.ContainsAny(snippet, "<&") {
		return cleanWhitespace(snippet)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return cleanWhitespace(snippet)
	}
	doc.Find("script, style").Remove()

	return cleanWhitespace(doc.Text())
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
