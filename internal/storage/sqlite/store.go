// Package sqlite persists analysis-run history: one row per analyzed
// capture with its stats snapshot and rendered report.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adoptai/zapi/internal/domain"
)

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is one persisted analysis run.
type Run struct {
	ID           string
	HARPath      string
	FilteredPath string
	Stats        domain.HarStats
	Report       string
	CreatedAt    time.Time
}

// New opens (creating if needed) the history database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			har_path TEXT NOT NULL,
			filtered_path TEXT,
			total_entries INTEGER NOT NULL,
			valid_entries INTEGER NOT NULL,
			skipped_entries INTEGER NOT NULL,
			unique_domains INTEGER NOT NULL,
			stats TEXT NOT NULL,
			report TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun inserts a run, stamping CreatedAt when unset.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	query := `INSERT INTO runs
		(id, har_path, filtered_path, total_entries, valid_entries,
		 skipped_entries, unique_domains, stats, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.HARPath, run.FilteredPath,
		run.Stats.TotalEntries, run.Stats.ValidEntries,
		run.Stats.SkippedEntries, run.Stats.UniqueDomains,
		string(stats), run.Report, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, har_path, filtered_path, stats, report, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var stats string
		if err := rows.Scan(&run.ID, &run.HARPath, &run.FilteredPath,
			&stats, &run.Report, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT id, har_path, filtered_path, stats, report, created_at
		FROM runs WHERE id = ?`

	var run Run
	var stats string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.HARPath, &run.FilteredPath, &stats, &run.Report, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &run, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
