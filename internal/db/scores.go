package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// SaveCandidateScores writes the scoring records of the given candidates in one batch and
// returns the number of rows updated. Candidates without an ID or a scoring record are
// skipped.
func (db *DB) SaveCandidateScores(ctx context.Context, jobID uuid.UUID, candidates []*types.Candidate) (int64, error) {
	batch := &pgx.Batch{}
	for _, c := range candidates {
		if c == nil || c.ID == "" || c.Scoring == nil {
			continue
		}
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return 0, fmt.Errorf("invalid candidate id %q: %w", c.ID, err)
		}
		cols, err := encodeScoring(c.Scoring)
		if err != nil {
			return 0, fmt.Errorf("candidate %s: %w", c.LinkedInURL, err)
		}
		batch.Queue(
			`UPDATE candidates SET scoring_persona_id = $1, scoring_fingerprint = $2, scores = $3,
			        explainability = $4, unscorable = $5, unscorable_reason = $6, updated_at = NOW()
			 WHERE id = $7 AND job_id = $8`,
			cols.PersonaID, cols.Fingerprint, cols.Scores, cols.Explainability,
			cols.Unscorable, cols.UnscorableReason, id, jobID,
		)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	var updated int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return updated, fmt.Errorf("failed to save candidate scores: %w", err)
		}
		updated += tag.RowsAffected()
	}
	return updated, nil
}

// UpdateJobStatus sets a job's status.
func (db *DB) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}
