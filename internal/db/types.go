package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Job status values
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// scoringColumns is the column form of a types.ScoringRecord.
type scoringColumns struct {
	PersonaID        *uuid.UUID
	Fingerprint      *string
	Scores           []byte
	Explainability   []byte
	Unscorable       bool
	UnscorableReason *string
}

// encodeScoring converts a scoring record into column values. A nil record clears the
// scoring columns.
func encodeScoring(rec *types.ScoringRecord) (scoringColumns, error) {
	if rec == nil {
		return scoringColumns{}, nil
	}
	personaID, err := uuid.Parse(rec.PersonaID)
	if err != nil {
		return scoringColumns{}, fmt.Errorf("invalid persona id %q: %w", rec.PersonaID, err)
	}
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return scoringColumns{}, fmt.Errorf("failed to marshal scores: %w", err)
	}
	explain := rec.Explainability
	if explain.KeywordsMatched == nil {
		explain.KeywordsMatched = []string{}
	}
	explainability, err := json.Marshal(explain)
	if err != nil {
		return scoringColumns{}, fmt.Errorf("failed to marshal explainability: %w", err)
	}
	return scoringColumns{
		PersonaID:        &personaID,
		Fingerprint:      &rec.Fingerprint,
		Scores:           scores,
		Explainability:   explainability,
		Unscorable:       rec.Unscorable,
		UnscorableReason: types.StringPtr(rec.UnscorableReason),
	}, nil
}

// decodeScoring rebuilds a scoring record from column values. Rows never scored
// (no persona) yield nil.
func decodeScoring(cols scoringColumns) (*types.ScoringRecord, error) {
	if cols.PersonaID == nil {
		return nil, nil
	}
	rec := &types.ScoringRecord{
		PersonaID:        cols.PersonaID.String(),
		Fingerprint:      types.Deref(cols.Fingerprint),
		Unscorable:       cols.Unscorable,
		UnscorableReason: types.Deref(cols.UnscorableReason),
	}
	if cols.Scores != nil {
		if err := json.Unmarshal(cols.Scores, &rec.Scores); err != nil {
			return nil, fmt.Errorf("failed to parse scores: %w", err)
		}
	}
	if cols.Explainability != nil {
		if err := json.Unmarshal(cols.Explainability, &rec.Explainability); err != nil {
			return nil, fmt.Errorf("failed to parse explainability: %w", err)
		}
	}
	if rec.Explainability.KeywordsMatched == nil {
		rec.Explainability.KeywordsMatched = []string{}
	}
	return rec, nil
}

// jsonList encodes a string list as a JSON array, never null.
func jsonList(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return data
}

// parseList decodes a JSON array column. Empty arrays decode to nil.
func parseList(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// parseUUID parses an id field, generating a new id when it is empty.
func parseUUID(field, id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.New(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", field, id, err)
	}
	return parsed, nil
}
