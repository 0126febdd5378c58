// Package export writes ranked candidates to CSV or JSON for hand-off to CRMs and
// spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Format defines supported export formats.
type Format string

const (
	// FormatCSV exports candidates as comma-separated values.
	FormatCSV Format = "csv"
	// FormatJSON exports candidates as a JSON array.
	FormatJSON Format = "json"
)

// Header is the CSV column order.
var Header = []string{
	"rank",
	"linkedin_url",
	"name",
	"title",
	"company",
	"location",
	"final_score",
	"semantic",
	"role",
	"industry",
	"geo",
	"keywords_matched",
	"unscorable_reason",
}

// Candidates exports the candidates of a page in the given format.
func Candidates(candidates []types.ScoredCandidate, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return toCSV(candidates)
	case FormatJSON:
		return toJSON(candidates)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat maps a flag value or file extension (".csv", "json") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv", "":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

func toCSV(candidates []types.ScoredCandidate) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, c := range candidates {
		row := []string{
			strconv.Itoa(c.Rank),
			c.LinkedInURL,
			types.Deref(c.InferredName),
			types.Deref(c.InferredTitle),
			types.Deref(c.InferredCompany),
			types.Deref(c.InferredLocation),
			formatScore(c.Scores.Final),
			formatScore(c.Scores.Semantic),
			formatScore(c.Scores.Role),
			formatScore(c.Scores.Industry),
			formatScore(c.Scores.Geo),
			strings.Join(c.Explainability.KeywordsMatched, "; "),
			c.UnscorableReason,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func toJSON(candidates []types.ScoredCandidate) ([]byte, error) {
	if candidates == nil {
		candidates = []types.ScoredCandidate{}
	}
	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidates: %w", err)
	}
	return data, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
