// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records conversion runs and their per-file outcomes in a
// SQLite database so past runs can be listed and inspected.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/formatflip/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultLimit is the number of runs History returns when limit is not positive.
const DefaultLimit = 20

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			input_path TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			input_ext TEXT,
			output_ext TEXT NOT NULL,
			decoder TEXT,
			workers INTEGER,
			converted INTEGER,
			skipped INTEGER,
			failed INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			outcome TEXT NOT NULL,
			message TEXT,
			duration_ms INTEGER,
			camera_make TEXT,
			camera_model TEXT,
			captured_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and every result in one transaction.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, input_path, output_dir, input_ext, output_ext,
			decoder, workers, converted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.InputPath, run.OutputDir, run.InputExt, run.OutputExt,
		run.Decoder, run.Workers, run.Converted, run.Skipped, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, input_path, output_path, outcome, message, duration_ms,
			camera_make, camera_model, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range run.Results {
		var md types.Metadata
		if res.Metadata != nil {
			md = *res.Metadata
		}
		_, err := stmt.ExecContext(ctx,
			run.ID, res.Task.InputPath, res.Task.OutputPath(), string(res.Outcome), res.Message,
			res.Duration.Milliseconds(), md.Make, md.Model, md.DateTime,
		)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", res.Task.InputPath, err)
		}
	}

	return tx.Commit()
}

// History returns the most recent runs, newest first, without results.
func (s *Store) History(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input_path, output_dir, input_ext, output_ext,
			decoder, workers, converted, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var r types.Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.InputPath, &r.OutputDir, &r.InputExt,
			&r.OutputExt, &r.Decoder, &r.Workers, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the per-file results of one run in insertion order.
func (s *Store) Files(ctx context.Context, runID string) ([]types.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input_path, output_path, outcome, message, duration_ms,
			camera_make, camera_model, captured_at
		 FROM files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var results []types.Result
	for rows.Next() {
		var input, output, outcome string
		var message, mk, model, captured sql.NullString
		var ms int64
		if err := rows.Scan(&input, &output, &outcome, &message, &ms, &mk, &model, &captured); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		res := types.Result{
			Task:     types.NewTask(input, filepath.Dir(output), filepath.Ext(output)),
			Outcome:  types.Outcome(outcome),
			Message:  message.String,
			Duration: time.Duration(ms) * time.Millisecond,
		}
		md := types.Metadata{Make: mk.String, Model: model.String, DateTime: captured.String}
		if !md.IsZero() {
			res.Metadata = &md
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
