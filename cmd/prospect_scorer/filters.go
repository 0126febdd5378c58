package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// filterFlags holds the candidate filter flags shared by rank and export.
type filterFlags struct {
	minScore     float64
	maxScore     float64
	location     string
	company      string
	titlePattern string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "Only keep candidates with final score >= value")
	cmd.Flags().Float64Var(&f.maxScore, "max-score", 1, "Only keep candidates with final score <= value")
	cmd.Flags().StringVar(&f.location, "location", "", "Only keep candidates whose location contains value (case-insensitive)")
	cmd.Flags().StringVar(&f.company, "company", "", "Only keep candidates whose company contains value (case-insensitive)")
	cmd.Flags().StringVar(&f.titlePattern, "title-pattern", "", "Only keep candidates whose title matches the regular expression")
}

// build returns the filters set on the command line. Score bounds apply only when given.
func (f *filterFlags) build(cmd *cobra.Command) types.CandidateFilters {
	filters := types.CandidateFilters{
		Location:     f.location,
		Company:      f.company,
		TitlePattern: f.titlePattern,
	}
	if cmd.Flags().Changed("min-score") {
		v := f.minScore
		filters.MinScore = &v
	}
	if cmd.Flags().Changed("max-score") {
		v := f.maxScore
		filters.MaxScore = &v
	}
	return filters
}
