package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dicomexport/internal/config"
)

// Run is one recorded extraction invocation.
type Run struct {
	ID          int64
	RunID       string
	ArchivePath string
	Kind        string
	Destination string
	CacheHit    bool
	Written     int
	Skipped     int
	Overwritten int
	Renamed     int
	Failed      int
	NonDicom    int
	Rendered    int
	Started     time.Time
	Finished    time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    archive_path TEXT NOT NULL,
    kind TEXT NOT NULL,
    destination TEXT NOT NULL,
    cache_hit INTEGER NOT NULL DEFAULT 0,
    written INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    overwritten INTEGER NOT NULL DEFAULT 0,
    renamed INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    non_dicom INTEGER NOT NULL DEFAULT 0,
    rendered INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the
// schema. The parent directory is created if missing.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := cfg.Catalog.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun inserts one completed run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, archive_path, kind, destination, cache_hit,
            written, skipped, overwritten, renamed, failed, non_dicom, rendered,
            started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.ArchivePath,
		run.Kind,
		run.Destination,
		boolToInt(run.CacheHit),
		run.Written,
		run.Skipped,
		run.Overwritten,
		run.Renamed,
		run.Failed,
		run.NonDicom,
		run.Rendered,
		run.Started.UTC().Format(time.RFC3339Nano),
		run.Finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRendered stores the rendered-image count for a recorded run.
func (s *Store) UpdateRendered(ctx context.Context, runID string, rendered int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET rendered = ? WHERE run_id = ?`, rendered, runID)
	if err != nil {
		return fmt.Errorf("update rendered count: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, run_id, archive_path, kind, destination, cache_hit,
            written, skipped, overwritten, renamed, failed, non_dicom, rendered,
            started_at, finished_at
        FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			cacheHit int
			started  string
			finished string
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.ArchivePath, &run.Kind, &run.Destination,
			&cacheHit, &run.Written, &run.Skipped, &run.Overwritten,
			&run.Renamed, &run.Failed, &run.NonDicom, &run.Rendered,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CacheHit = cacheHit != 0
		run.Started = parseTimestamp(started)
		run.Finished = parseTimestamp(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
