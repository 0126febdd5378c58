// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/prospect-scorer/internal/scoring"
	"github.com/jonathan/prospect-scorer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// listSummary writes up to limit items as bullets, followed by a count of the rest.
func listSummary(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintScoringTarget outputs the ICP and persona a batch is ranked against.
func (p *Printer) PrintScoringTarget(icp *types.ICP, persona *types.Persona) {
	if icp == nil || persona == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry: %s\n", icp.Industry))
	if len(icp.SubIndustries) > 0 {
		sb.WriteString(fmt.Sprintf("Sub:      %s\n", strings.Join(icp.SubIndustries, ", ")))
	}
	name := persona.PersonaName
	if name == "" {
		name = persona.ID
	}
	sb.WriteString(fmt.Sprintf("Persona:  %s\n", name))
	sb.WriteString("\n")

	listSummary(&sb, "Titles", persona.Titles, 3)
	listSummary(&sb, "Keywords", persona.Keywords, maxItemsToShow)
	locations := append(append([]string{}, icp.TargetLocations...), persona.Locations...)
	listSummary(&sb, "Locations", locations, 3)
	listSummary(&sb, "Tech stack", icp.Technologies(), maxItemsToShow)

	p.printBox("SCORING TARGET", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidatePage outputs the top candidates of a ranked page with their scores.
func (p *Printer) PrintCandidatePage(page *types.CandidatePage) {
	if page == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Page %d (size %d), %d candidates after filters\n", page.Page, page.PageSize, page.Total))
	if page.Unscorable > 0 {
		sb.WriteString(fmt.Sprintf("Unscorable: %d\n", page.Unscorable))
	}
	if page.Incomplete {
		sb.WriteString(fmt.Sprintf("⚠ Incomplete: %d candidates not scored\n", page.Skipped))
	}

	count := min(len(page.Candidates), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		c := page.Candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", c.Rank, displayName(&c)))
		if c.Unscorable {
			sb.WriteString(fmt.Sprintf("    Not scored: %s\n", c.UnscorableReason))
		} else {
			sb.WriteString(fmt.Sprintf("    Score: %.2f  (S %.2f  R %.2f  I %.2f  G %.2f)\n",
				c.Scores.Final, c.Scores.Semantic, c.Scores.Role, c.Scores.Industry, c.Scores.Geo))
		}
		if len(c.Explainability.KeywordsMatched) > 0 {
			sb.WriteString(fmt.Sprintf("    Matched: %s\n", strings.Join(c.Explainability.KeywordsMatched, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(page.Candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more on this page", len(page.Candidates)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExplanation outputs the factor breakdown behind one candidate's final score.
func (p *Printer) PrintExplanation(c *types.ScoredCandidate) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", displayName(c)))
	sb.WriteString(fmt.Sprintf("Profile:   %s\n", c.LinkedInURL))
	if title := types.Deref(c.InferredTitle); title != "" {
		sb.WriteString(fmt.Sprintf("Title:     %s\n", title))
	}
	if company := types.Deref(c.InferredCompany); company != "" {
		sb.WriteString(fmt.Sprintf("Company:   %s\n", company))
	}
	if location := types.Deref(c.InferredLocation); location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", location))
	}
	sb.WriteString("\n")

	if c.Unscorable {
		sb.WriteString(fmt.Sprintf("⚠ Could not score: %s\n", c.UnscorableReason))
	}

	values := map[scoring.Factor]float64{
		scoring.FactorSemantic: c.Scores.Semantic,
		scoring.FactorRole:     c.Scores.Role,
		scoring.FactorIndustry: c.Scores.Industry,
		scoring.FactorGeo:      c.Scores.Geo,
	}
	sb.WriteString(fmt.Sprintf("%-10s %6s %13s\n", "Factor", "Score", "Contribution"))
	for _, f := range scoring.Factors {
		contribution := c.Explainability.FeatureContributions[f.String()]
		sb.WriteString(fmt.Sprintf("%-10s %6.2f %13.3f\n", f, values[f], contribution))
	}
	sb.WriteString(fmt.Sprintf("%-10s %6s %13.3f\n", "final", "", c.Scores.Final))

	if len(c.Explainability.KeywordsMatched) > 0 {
		sb.WriteString("\n")
		listSummary(&sb, "Matched keywords", c.Explainability.KeywordsMatched, 10)
	}

	p.printBox("SCORE EXPLANATION", strings.TrimSuffix(sb.String(), "\n"))
}

func displayName(c *types.ScoredCandidate) string {
	if name := types.Deref(c.InferredName); name != "" {
		return name
	}
	return c.LinkedInURL
}
