package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// -----------------------------------------------------------------------------
// Job Bundle Methods
// -----------------------------------------------------------------------------

// SaveJobBundle stores a job with its ICP, personas and candidates in one transaction.
// Empty IDs are generated and written back into the bundle. Candidates that already
// exist for the job (same linkedin_url) are updated in place.
func (db *DB) SaveJobBundle(ctx context.Context, bundle *types.JobBundle) (uuid.UUID, error) {
	if bundle == nil {
		return uuid.Nil, fmt.Errorf("bundle is required")
	}
	if err := assignIDs(bundle); err != nil {
		return uuid.Nil, err
	}
	jobID := uuid.MustParse(bundle.JobID)

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, status) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET updated_at = NOW()`,
		jobID, JobStatusPending,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}

	icp := &bundle.ICP
	firmographics, err := json.Marshal(icp.Firmographics)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal firmographics: %w", err)
	}
	techStack := icp.TechStack
	if techStack == nil {
		techStack = map[string][]string{}
	}
	techStackJSON, err := json.Marshal(techStack)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal tech stack: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO icps (id, job_id, company_name, industry, sub_industries, firmographics,
		                   value_props, pain_points, trigger_events, tech_stack, target_locations, embedding_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		   company_name = $3, industry = $4, sub_industries = $5, firmographics = $6,
		   value_props = $7, pain_points = $8, trigger_events = $9, tech_stack = $10,
		   target_locations = $11, embedding_id = $12`,
		uuid.MustParse(icp.ID), jobID, icp.CompanyName, icp.Industry, jsonList(icp.SubIndustries), firmographics,
		jsonList(icp.ValueProps), jsonList(icp.PainPoints), jsonList(icp.TriggerEvents), techStackJSON,
		jsonList(icp.TargetLocations), icp.EmbeddingID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save icp: %w", err)
	}

	for i := range bundle.Personas {
		p := &bundle.Personas[i]
		_, err = tx.Exec(ctx,
			`INSERT INTO personas (id, icp_id, persona_name, titles, goals, pains, kpis, keywords, locations)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE SET
			   persona_name = $3, titles = $4, goals = $5, pains = $6, kpis = $7, keywords = $8, locations = $9`,
			uuid.MustParse(p.ID), uuid.MustParse(p.ICPID), p.PersonaName, jsonList(p.Titles), jsonList(p.Goals),
			jsonList(p.Pains), jsonList(p.KPIs), jsonList(p.Keywords), jsonList(p.Locations),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to save persona %s: %w", p.ID, err)
		}
	}

	for _, c := range bundle.Candidates {
		if c == nil {
			continue
		}
		cols, err := encodeScoring(c.Scoring)
		if err != nil {
			return uuid.Nil, fmt.Errorf("candidate %s: %w", c.LinkedInURL, err)
		}
		var id uuid.UUID
		err = tx.QueryRow(ctx,
			`INSERT INTO candidates (id, job_id, linkedin_url, inferred_name, inferred_title, inferred_location,
			                         inferred_company, result_title, result_snippet, scoring_persona_id,
			                         scoring_fingerprint, scores, explainability, unscorable, unscorable_reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 ON CONFLICT (job_id, linkedin_url) DO UPDATE SET
			   inferred_name = $4, inferred_title = $5, inferred_location = $6, inferred_company = $7,
			   result_title = $8, result_snippet = $9, updated_at = NOW()
			 RETURNING id`,
			uuid.MustParse(c.ID), jobID, c.LinkedInURL, c.InferredName, c.InferredTitle, c.InferredLocation,
			c.InferredCompany, c.ResultTitle, c.ResultSnippet, cols.PersonaID,
			cols.Fingerprint, cols.Scores, cols.Explainability, cols.Unscorable, cols.UnscorableReason,
		).Scan(&id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to save candidate %s: %w", c.LinkedInURL, err)
		}
		c.ID = id.String()
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit job bundle: %w", err)
	}
	return jobID, nil
}

// assignIDs fills empty IDs and links every child to the job, ICP and persona IDs.
func assignIDs(bundle *types.JobBundle) error {
	jobID, err := parseUUID("job id", bundle.JobID)
	if err != nil {
		return err
	}
	bundle.JobID = jobID.String()

	icp := &bundle.ICP
	if icp.JobID != "" && icp.JobID != bundle.JobID {
		return types.InvalidArgument("icp %q belongs to job %q, not %q", icp.ID, icp.JobID, bundle.JobID)
	}
	originalICPID := icp.ID
	icpID, err := parseUUID("icp id", icp.ID)
	if err != nil {
		return err
	}
	icp.ID = icpID.String()
	icp.JobID = bundle.JobID

	for i := range bundle.Personas {
		p := &bundle.Personas[i]
		if p.ICPID != originalICPID {
			return types.LineageMismatch("persona %q derives from icp %q, not %q", p.ID, p.ICPID, originalICPID)
		}
		personaID, err := parseUUID("persona id", p.ID)
		if err != nil {
			return err
		}
		p.ID = personaID.String()
		p.ICPID = icp.ID
	}

	for _, c := range bundle.Candidates {
		if c == nil {
			continue
		}
		if err := c.Validate(); err != nil {
			return types.InvalidArgumentCause(err, "candidate %q", c.ID)
		}
		candidateID, err := parseUUID("candidate id", c.ID)
		if err != nil {
			return err
		}
		c.ID = candidateID.String()
		c.JobID = bundle.JobID
	}
	return nil
}

// GetJobBundle loads a job's ICP, personas and candidates, including stored scores.
// Returns nil if the job or its ICP does not exist.
func (db *DB) GetJobBundle(ctx context.Context, jobID uuid.UUID) (*types.JobBundle, error) {
	bundle := &types.JobBundle{JobID: jobID.String()}

	var icpID uuid.UUID
	var subIndustries, firmographics, valueProps, painPoints, triggerEvents, techStack, targetLocations []byte
	icp := &bundle.ICP
	err := db.pool.QueryRow(ctx,
		`SELECT id, company_name, industry, sub_industries, firmographics, value_props, pain_points,
		        trigger_events, tech_stack, target_locations, embedding_id
		 FROM icps WHERE job_id = $1`,
		jobID,
	).Scan(&icpID, &icp.CompanyName, &icp.Industry, &subIndustries, &firmographics, &valueProps,
		&painPoints, &triggerEvents, &techStack, &targetLocations, &icp.EmbeddingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get icp: %w", err)
	}
	icp.ID = icpID.String()
	icp.JobID = bundle.JobID

	lists := []struct {
		data []byte
		dst  *[]string
	}{
		{subIndustries, &icp.SubIndustries},
		{valueProps, &icp.ValueProps},
		{painPoints, &icp.PainPoints},
		{triggerEvents, &icp.TriggerEvents},
		{targetLocations, &icp.TargetLocations},
	}
	for _, l := range lists {
		if *l.dst, err = parseList(l.data); err != nil {
			return nil, fmt.Errorf("failed to parse icp list: %w", err)
		}
	}
	if err := json.Unmarshal(firmographics, &icp.Firmographics); err != nil {
		return nil, fmt.Errorf("failed to parse firmographics: %w", err)
	}
	if err := json.Unmarshal(techStack, &icp.TechStack); err != nil {
		return nil, fmt.Errorf("failed to parse tech stack: %w", err)
	}
	if len(icp.TechStack) == 0 {
		icp.TechStack = nil
	}

	if bundle.Personas, err = db.listPersonas(ctx, icpID); err != nil {
		return nil, err
	}
	if bundle.Candidates, err = db.ListCandidates(ctx, jobID); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (db *DB) listPersonas(ctx context.Context, icpID uuid.UUID) ([]types.Persona, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, persona_name, titles, goals, pains, kpis, keywords, locations
		 FROM personas WHERE icp_id = $1 ORDER BY created_at, id`,
		icpID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var personas []types.Persona
	for rows.Next() {
		var id uuid.UUID
		var titles, goals, pains, kpis, keywords, locations []byte
		p := types.Persona{ICPID: icpID.String()}
		if err := rows.Scan(&id, &p.PersonaName, &titles, &goals, &pains, &kpis, &keywords, &locations); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		p.ID = id.String()
		for _, l := range []struct {
			data []byte
			dst  *[]string
		}{
			{titles, &p.Titles}, {goals, &p.Goals}, {pains, &p.Pains},
			{kpis, &p.KPIs}, {keywords, &p.Keywords}, {locations, &p.Locations},
		} {
			if *l.dst, err = parseList(l.data); err != nil {
				return nil, fmt.Errorf("failed to parse persona %s: %w", p.ID, err)
			}
		}
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// ListCandidates returns a job's candidates ordered by linkedin_url.
func (db *DB) ListCandidates(ctx context.Context, jobID uuid.UUID) ([]*types.Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, linkedin_url, inferred_name, inferred_title, inferred_location, inferred_company,
		        result_title, result_snippet, scoring_persona_id, scoring_fingerprint, scores,
		        explainability, unscorable, unscorable_reason
		 FROM candidates WHERE job_id = $1 ORDER BY linkedin_url`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*types.Candidate
	for rows.Next() {
		var id uuid.UUID
		var cols scoringColumns
		c := &types.Candidate{JobID: jobID.String()}
		if err := rows.Scan(&id, &c.LinkedInURL, &c.InferredName, &c.InferredTitle, &c.InferredLocation,
			&c.InferredCompany, &c.ResultTitle, &c.ResultSnippet, &cols.PersonaID, &cols.Fingerprint,
			&cols.Scores, &cols.Explainability, &cols.Unscorable, &cols.UnscorableReason); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.ID = id.String()
		if c.Scoring, err = decodeScoring(cols); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.LinkedInURL, err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
