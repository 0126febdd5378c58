package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/export"
	"github.com/jonathan/prospect-scorer/internal/logger"
	"github.com/jonathan/prospect-scorer/internal/ranking"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every ranked candidate as CSV or JSON",
	Long:  "Ranks all candidates of a job bundle for the given persona and writes them, in rank order, as CSV or JSON.",
	RunE:  runExport,
}

var (
	exportSource  bundleSource
	exportFilters filterFlags
	exportPersona string
	exportFormat  string
	exportOutput  string
)

func init() {
	exportSource.register(exportCmd)
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportPersona, "persona", "p", "", "Persona ID to rank for (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv or json (defaults to the --out extension, then csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to output file (stdout when empty)")

	if err := exportCmd.MarkFlagRequired("persona"); err != nil {
		panic(fmt.Sprintf("failed to mark persona flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := resolveFormat(exportFormat, exportOutput)
	if err != nil {
		return err
	}

	loaded, err := exportSource.load(cmd.Context())
	if err != nil {
		return err
	}
	defer loaded.Close()
	bundle := loaded.Bundle

	persona, err := bundle.FindPersona(exportPersona)
	if err != nil {
		return err
	}
	svc, err := newService(nil)
	if err != nil {
		return err
	}

	page, err := svc.RankAll(cmd.Context(), ranking.Request{
		JobID:      bundle.JobID,
		ICP:        &bundle.ICP,
		Persona:    persona,
		Candidates: bundle.Candidates,
		Filters:    exportFilters.build(cmd),
	})
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}
	if page.Incomplete {
		return fmt.Errorf("ranking was interrupted with %d candidates unscored", page.Skipped)
	}
	ranked := page.Candidates

	content, err := export.Candidates(ranked, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, exportOutput, content); err != nil {
		return err
	}
	logger.WithJob(log, bundle.JobID, persona.ID).Debug("exported candidates",
		zap.Int("count", len(ranked)), zap.String("format", string(format)))

	if exportOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d candidates to %s\n", len(ranked), exportOutput)
	}
	return nil
}

// resolveFormat picks the export format from the flag, then the output extension.
func resolveFormat(flag, out string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		if format, err := export.ParseFormat(ext); err == nil {
			return format, nil
		}
	}
	return export.FormatCSV, nil
}
