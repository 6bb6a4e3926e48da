// Package runstore persists audit runs in SQLite. The caller must
// blank-import a database/sql driver named "sqlite":
//
//	import _ "modernc.org/sqlite"
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mkmetko/lighthouse/fontsize"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	run_id         TEXT PRIMARY KEY,
	url            TEXT NOT NULL,
	score          INTEGER NOT NULL,
	not_applicable INTEGER NOT NULL DEFAULT 0,
	display_value  TEXT NOT NULL DEFAULT '',
	report         TEXT NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_runs_url ON audit_runs(url, created_at);
`

// Run is one persisted audit outcome.
type Run struct {
	RunID         string           `json:"run_id"`
	URL           string           `json:"url"`
	Score         int              `json:"score"`
	NotApplicable bool             `json:"not_applicable,omitempty"`
	DisplayValue  string           `json:"display_value,omitempty"`
	Report        *fontsize.Result `json:"report"`
	CreatedAt     int64            `json:"created_at"` // epoch milliseconds
}

// Store is the audit-run database handle.
type Store struct {
	db    *sql.DB
	genID func() string
	now   func() time.Time
}

// Option customises Open behaviour.
type Option func(*Store)

// WithIDGenerator overrides run ID generation (testing).
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.genID = gen }
}

// WithClock overrides the timestamp source (testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (or creates) the run database at path with WAL and
// foreign-key pragmas, and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("runstore: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runstore: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("runstore: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore: schema: %w", err)
	}

	s := &Store{
		db:    db,
		genID: func() string { return "run_" + uuid.Must(uuid.NewV7()).String() },
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists an audit result and returns the stored run.
func (s *Store) SaveRun(ctx context.Context, url string, report *fontsize.Result) (*Run, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("runstore: marshal report: %w", err)
	}

	run := &Run{
		RunID:         s.genID(),
		URL:           url,
		Score:         report.Score,
		NotApplicable: report.NotApplicable,
		DisplayValue:  report.DisplayValue,
		Report:        report,
		CreatedAt:     s.now().UnixMilli(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_runs (run_id, url, score, not_applicable, display_value, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.URL, run.Score, boolInt(run.NotApplicable),
		run.DisplayValue, string(data), run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("runstore: insert run: %w", err)
	}
	return run, nil
}

// GetRun fetches a run by ID. Returns nil when not found.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, url, score, not_applicable, display_value, report, created_at
		FROM audit_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, url, score, not_applicable, display_value, report, created_at
		FROM audit_runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runstore: list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runstore: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var notApplicable int
	var report string
	err := row.Scan(&run.RunID, &run.URL, &run.Score, &notApplicable,
		&run.DisplayValue, &report, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.NotApplicable = notApplicable != 0
	if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
		return nil, err
	}
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
