// Package db provides optional PostgreSQL persistence of run history.
// When no database is configured the pipeline runs entirely off the
// filesystem; a connection failure downgrades to a warning, never an abort.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
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

// EnsureSchema creates the run-history tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_runs (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			snapshot_id  TEXT NOT NULL,
			status       TEXT NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			summary      JSONB
		);
		CREATE TABLE IF NOT EXISTS run_steps (
			run_id      UUID NOT NULL REFERENCES catalog_runs(id) ON DELETE CASCADE,
			step        TEXT NOT NULL,
			status      TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, step)
		);`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun records a new catalog run and returns its ID
func (db *DB) CreateRun(ctx context.Context, snapshotID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO catalog_runs (snapshot_id, status)
		 VALUES ($1, 'running')
		 RETURNING id`,
		snapshotID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a catalog run as completed
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE catalog_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// RecordStep stores the outcome and duration of one pipeline step
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, step, status string, durationMS int64) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_steps (run_id, step, status, duration_ms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET status = $3, duration_ms = $4, created_at = NOW()`,
		runID, step, status, durationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", step, err)
	}
	return nil
}

// SaveSummary stores the run summary (delta counts and the like) as JSONB
func (db *DB) SaveSummary(ctx context.Context, runID uuid.UUID, summary any) error {
	jsonBytes, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE catalog_runs SET summary = $1 WHERE id = $2`,
		jsonBytes, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}
