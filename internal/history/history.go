// Package history keeps a SQLite ledger of generate runs inside the output
// directory, so accumulated artifacts can be traced back to their URLs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one ledger row.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	URLs       []string
	Longform   bool
	Language   string
	Status     Status
	Output     string
	Fallback   bool
	Error      string
}

// Store wraps the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER,
    urls        TEXT NOT NULL,
    longform    INTEGER NOT NULL DEFAULT 0,
    language    TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL,
    output      TEXT NOT NULL DEFAULT '',
    fallback    INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT ''
)`

// Open creates or opens the ledger at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare history db: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start records a new running run.
func (s *Store) Start(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("history: run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, urls, longform, language, status) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixNano(),
		strings.Join(run.URLs, "\n"),
		boolInt(run.Longform),
		run.Language,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	return nil
}

// Finish stores the outcome of a run.
func (s *Store) Finish(ctx context.Context, run Run) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, output = ?, fallback = ?, error = ? WHERE id = ?`,
		nullableNano(run.FinishedAt),
		run.Status,
		run.Output,
		boolInt(run.Fallback),
		run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("history: update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("history: run %s not found", run.ID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, 0), urls, longform, language, status, output, fallback, error
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                Run
			started, finished  int64
			urls               string
			longform, fallback int
			status             string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &urls, &longform, &run.Language, &status, &run.Output, &fallback, &run.Error); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		run.StartedAt = time.Unix(0, started)
		if finished != 0 {
			run.FinishedAt = time.Unix(0, finished)
		}
		if urls != "" {
			run.URLs = strings.Split(urls, "\n")
		}
		run.Longform = longform != 0
		run.Fallback = fallback != 0
		run.Status = Status(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// nullableNano stores a zero time as NULL; UnixNano is undefined for it.
func nullableNano(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixNano()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
