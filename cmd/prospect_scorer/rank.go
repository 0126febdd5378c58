package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/logger"
	"github.com/jonathan/prospect-scorer/internal/observability"
	"github.com/jonathan/prospect-scorer/internal/ranking"
	"github.com/jonathan/prospect-scorer/internal/schemas"
	"github.com/jonathan/prospect-scorer/internal/types"
	embedded "github.com/jonathan/prospect-scorer/schemas"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a job's candidates for one persona",
	Long: "Scores every unscored or stale candidate of a job bundle for the given persona, then " +
		"filters, sorts and paginates them into a CandidatePage JSON.",
	RunE: runRank,
}

var (
	rankSource      bundleSource
	rankFilters     filterFlags
	rankPersona     string
	rankPage        int
	rankPageSize    int
	rankTimeout     time.Duration
	rankOutput      string
	rankUpdate      bool
	rankMetricsFile string
)

func init() {
	rankSource.register(rankCmd)
	rankFilters.register(rankCmd)
	rankCmd.Flags().StringVarP(&rankPersona, "persona", "p", "", "Persona ID to rank for (required)")
	rankCmd.Flags().IntVar(&rankPage, "page", 1, "Page number, starting at 1")
	rankCmd.Flags().IntVar(&rankPageSize, "page-size", 0, "Candidates per page (defaults to config ranking.default_page_size)")
	rankCmd.Flags().DurationVar(&rankTimeout, "timeout", 0, "Stop scoring after this long and return an incomplete page")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output CandidatePage JSON file (stdout when empty)")
	rankCmd.Flags().BoolVar(&rankUpdate, "update-bundle", false, "Write scoring records back into the --bundle file")
	rankCmd.Flags().StringVar(&rankMetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	if err := rankCmd.MarkFlagRequired("persona"); err != nil {
		panic(fmt.Sprintf("failed to mark persona flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// 1. Load job bundle
	loaded, err := rankSource.load(ctx)
	if err != nil {
		return err
	}
	defer loaded.Close()
	bundle := loaded.Bundle

	persona, err := bundle.FindPersona(rankPersona)
	if err != nil {
		return err
	}
	runLog := logger.WithJob(log, bundle.JobID, persona.ID)

	// 2. Build service
	var metrics *ranking.Metrics
	registry := prometheus.NewRegistry()
	if rankMetricsFile != "" {
		metrics = ranking.NewMetrics()
		if err := metrics.Register(registry); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	svc, err := newService(metrics)
	if err != nil {
		return err
	}

	// 3. Rank
	pageSize := rankPageSize
	if pageSize == 0 {
		pageSize = cfg.Ranking.DefaultPageSize
	}
	rankCtx := ctx
	if rankTimeout > 0 {
		var cancel context.CancelFunc
		rankCtx, cancel = context.WithTimeout(ctx, rankTimeout)
		defer cancel()
	}
	page, err := svc.Rank(rankCtx, ranking.Request{
		JobID:      bundle.JobID,
		ICP:        &bundle.ICP,
		Persona:    persona,
		Candidates: bundle.Candidates,
		Filters:    rankFilters.build(cmd),
		Page:       rankPage,
		PageSize:   pageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}
	if page.Incomplete {
		runLog.Warn("ranking stopped before every candidate was scored", zap.Int("skipped", page.Skipped))
	}

	if verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintScoringTarget(&bundle.ICP, persona)
		printer.PrintCandidatePage(page)
	}

	// 4. Validate output against schema (non-fatal)
	if err := schemas.Validate(embedded.CandidatePage, page); err != nil {
		runLog.Warn("output validation failed", zap.Error(err))
	}

	// 5. Write output
	jsonOutput, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidate page to JSON: %w", err)
	}
	if err := writeOutput(cmd, rankOutput, jsonOutput); err != nil {
		return err
	}

	// 6. Persist scoring records
	if err := persistScores(ctx, loaded, page.Incomplete, runLog); err != nil {
		return err
	}

	if rankMetricsFile != "" {
		if err := prometheus.WriteToTextfile(rankMetricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics file %s: %w", rankMetricsFile, err)
		}
	}

	if rankOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully ranked %d candidates (page %d, %d returned) to %s\n",
			page.Total, page.Page, len(page.Candidates), rankOutput)
	}
	return nil
}

// scoreStore persists scoring records in database mode.
type scoreStore interface {
	SaveCandidateScores(ctx context.Context, jobID uuid.UUID, candidates []*types.Candidate) (int64, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
}

// persistScores saves the scoring records to the database in database mode, or back into
// the bundle file when --update-bundle is set.
func persistScores(ctx context.Context, loaded *loadedBundle, incomplete bool, runLog *zap.Logger) error {
	if loaded.Store != nil {
		return saveToStore(ctx, loaded.Store, loaded.JobID, loaded.Bundle.Candidates, incomplete, runLog)
	}
	if rankUpdate && rankSource.bundlePath != "" {
		if err := writeBundleFile(rankSource.bundlePath, loaded.Bundle); err != nil {
			return err
		}
		runLog.Debug("updated job bundle", zap.String("path", rankSource.bundlePath))
	}
	return nil
}

// saveToStore writes the scores that were computed. The job is marked completed only when
// every candidate was scored; a ranking cut short leaves the status unchanged.
func saveToStore(ctx context.Context, store scoreStore, jobID uuid.UUID, candidates []*types.Candidate, incomplete bool, runLog *zap.Logger) error {
	updated, err := store.SaveCandidateScores(ctx, jobID, candidates)
	if err != nil {
		return err
	}
	runLog.Debug("saved candidate scores", zap.Int64("updated", updated))
	if incomplete {
		runLog.Warn("ranking incomplete, job status left unchanged", zap.String("job_id", jobID.String()))
		return nil
	}
	return store.UpdateJobStatus(ctx, jobID, db.JobStatusCompleted)
}

// writeOutput writes content to path, creating its directory, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, content []byte) error {
	if path == "" {
		if !bytes.HasSuffix(content, []byte("\n")) {
			content = append(content, '\n')
		}
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
