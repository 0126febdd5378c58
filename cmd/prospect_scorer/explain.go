package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/observability"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain one candidate's score for a persona",
	Long:  "Scores a single candidate for the given persona and prints the per-factor breakdown and matched keywords.",
	RunE:  runExplain,
}

var (
	explainSource  bundleSource
	explainPersona string
	explainURL     string
	explainJSON    bool
)

func init() {
	explainSource.register(explainCmd)
	explainCmd.Flags().StringVarP(&explainPersona, "persona", "p", "", "Persona ID to score for (required)")
	explainCmd.Flags().StringVarP(&explainURL, "url", "u", "", "LinkedIn URL of the candidate (required)")
	explainCmd.Flags().BoolVar(&explainJSON, "output-json", false, "Print the scored candidate as JSON")

	if err := explainCmd.MarkFlagRequired("persona"); err != nil {
		panic(fmt.Sprintf("failed to mark persona flag as required: %v", err))
	}
	if err := explainCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, _ []string) error {
	loaded, err := explainSource.load(cmd.Context())
	if err != nil {
		return err
	}
	defer loaded.Close()
	bundle := loaded.Bundle

	persona, err := bundle.FindPersona(explainPersona)
	if err != nil {
		return err
	}
	candidate, err := bundle.FindCandidate(explainURL)
	if err != nil {
		return err
	}

	svc, err := newService(nil)
	if err != nil {
		return err
	}
	scored, err := svc.Explain(&bundle.ICP, persona, candidate)
	if err != nil {
		return fmt.Errorf("failed to explain candidate: %w", err)
	}

	if explainJSON {
		jsonOutput, err := json.MarshalIndent(scored, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal explanation to JSON: %w", err)
		}
		return writeOutput(cmd, "", jsonOutput)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintExplanation(scored)
	return nil
}
