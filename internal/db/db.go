// Package db provides PostgreSQL storage for job bundles and candidate scores.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables used by the scorer if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema is the DDL for jobs, ICPs, personas and candidates. List-valued profile fields
// and scoring output are stored as JSONB.
const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          UUID PRIMARY KEY,
	website_url TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS icps (
	id               UUID PRIMARY KEY,
	job_id           UUID NOT NULL UNIQUE REFERENCES jobs(id) ON DELETE CASCADE,
	company_name     TEXT NOT NULL DEFAULT '',
	industry         TEXT NOT NULL,
	sub_industries   JSONB NOT NULL DEFAULT '[]',
	firmographics    JSONB NOT NULL DEFAULT '{}',
	value_props      JSONB NOT NULL DEFAULT '[]',
	pain_points      JSONB NOT NULL DEFAULT '[]',
	trigger_events   JSONB NOT NULL DEFAULT '[]',
	tech_stack       JSONB NOT NULL DEFAULT '{}',
	target_locations JSONB NOT NULL DEFAULT '[]',
	embedding_id     TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS personas (
	id           UUID PRIMARY KEY,
	icp_id       UUID NOT NULL REFERENCES icps(id) ON DELETE CASCADE,
	persona_name TEXT NOT NULL DEFAULT '',
	titles       JSONB NOT NULL DEFAULT '[]',
	goals        JSONB NOT NULL DEFAULT '[]',
	pains        JSONB NOT NULL DEFAULT '[]',
	kpis         JSONB NOT NULL DEFAULT '[]',
	keywords     JSONB NOT NULL DEFAULT '[]',
	locations    JSONB NOT NULL DEFAULT '[]',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS candidates (
	id                  UUID PRIMARY KEY,
	job_id              UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	linkedin_url        TEXT NOT NULL,
	inferred_name       TEXT,
	inferred_title      TEXT,
	inferred_location   TEXT,
	inferred_company    TEXT,
	result_title        TEXT NOT NULL DEFAULT '',
	result_snippet      TEXT NOT NULL DEFAULT '',
	scoring_persona_id  UUID,
	scoring_fingerprint TEXT,
	scores              JSONB,
	explainability      JSONB,
	unscorable          BOOLEAN NOT NULL DEFAULT FALSE,
	unscorable_reason   TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (job_id, linkedin_url)
);

CREATE INDEX IF NOT EXISTS ix_candidates_job_id ON candidates(job_id);
`
