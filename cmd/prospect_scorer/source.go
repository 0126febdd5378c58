package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/schemas"
	"github.com/jonathan/prospect-scorer/internal/types"
	embedded "github.com/jonathan/prospect-scorer/schemas"
)

// bundleSource selects where a job bundle comes from: a JSON file or Postgres.
type bundleSource struct {
	bundlePath  string
	databaseURL string
	jobID       string
}

// loadedBundle is a job bundle plus, in database mode, the store it was read from.
type loadedBundle struct {
	Bundle *types.JobBundle
	Store  *db.DB
	JobID  uuid.UUID
}

// Close releases the database connection, if any.
func (l *loadedBundle) Close() {
	if l.Store != nil {
		l.Store.Close()
	}
}

func (s *bundleSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.bundlePath, "bundle", "b", "", "Path to input JobBundle JSON file")
	cmd.Flags().StringVar(&s.databaseURL, "database-url", "", "PostgreSQL URL to load the job from (defaults to config database_url)")
	cmd.Flags().StringVar(&s.jobID, "job-id", "", "Job UUID to load from the database")
}

func (s *bundleSource) load(ctx context.Context) (*loadedBundle, error) {
	if s.bundlePath != "" {
		bundle, err := loadBundleFile(s.bundlePath)
		if err != nil {
			return nil, err
		}
		return &loadedBundle{Bundle: bundle}, nil
	}

	databaseURL := s.databaseURL
	if databaseURL == "" && cfg != nil {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" || s.jobID == "" {
		return nil, errors.New("either --bundle or --job-id with a database URL is required")
	}
	jobID, err := uuid.Parse(s.jobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", s.jobID, err)
	}

	store, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	bundle, err := store.GetJobBundle(ctx, jobID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if bundle == nil {
		store.Close()
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return &loadedBundle{Bundle: bundle, Store: store, JobID: jobID}, nil
}

// loadBundleFile reads a job bundle, validating it against the embedded schema first.
func loadBundleFile(path string) (*types.JobBundle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job bundle file %s: %w", path, err)
	}
	if err := schemas.ValidateBytes(embedded.JobBundle, content); err != nil {
		return nil, fmt.Errorf("invalid job bundle %s: %w", path, err)
	}

	var bundle types.JobBundle
	if err := json.Unmarshal(content, &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job bundle JSON: %w", err)
	}
	if bundle.JobID == "" {
		bundle.JobID = bundle.ICP.JobID
	}
	return &bundle, nil
}

// writeBundleFile writes the bundle back, carrying the candidates' scoring records.
func writeBundleFile(path string, bundle *types.JobBundle) error {
	content, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job bundle to JSON: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write job bundle file %s: %w", path, err)
	}
	return nil
}
