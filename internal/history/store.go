// Package history persists build records so the daemon and CLI can report
// what was built, when, and how it went.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Build is one recorded documentation build.
type Build struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Outcome   string            `json:"outcome"` // success|warning|failed|canceled
	Trigger   string            `json:"trigger"` // manual|watch|schedule|retry
	Commit    string            `json:"commit,omitempty"`
	Branch    string            `json:"branch,omitempty"`
	Error     string            `json:"error,omitempty"`
	Stages    map[string]string `json:"stages,omitempty"` // stage name -> result
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) the build history database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		trigger_source TEXT NOT NULL,
		commit_hash TEXT,
		branch TEXT,
		error TEXT,
		stages TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_started_at ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_outcome ON builds(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one build.
func (s *Store) Record(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stagesJSON []byte
	if b.Stages != nil {
		var err error
		stagesJSON, err = json.Marshal(b.Stages)
		if err != nil {
			return fmt.Errorf("marshal stages: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, started_at, duration_ms, outcome, trigger_source, commit_hash, branch, error, stages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartedAt.Unix(), b.Duration.Milliseconds(), b.Outcome, b.Trigger,
		b.Commit, b.Branch, b.Error, stagesJSON,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, outcome, trigger_source, commit_hash, branch, error, stages
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// ByID returns one build, or ErrNotFound.
func (s *Store) ByID(ctx context.Context, id string) (Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration_ms, outcome, trigger_source, commit_hash, branch, error, stages
		 FROM builds WHERE id = ?`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, ErrNotFound{ID: id}
	}
	return b, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(r rowScanner) (Build, error) {
	var (
		b          Build
		started    int64
		durationMS int64
		commit     sql.NullString
		branch     sql.NullString
		errMsg     sql.NullString
		stagesJSON sql.NullString
	)
	if err := r.Scan(&b.ID, &started, &durationMS, &b.Outcome, &b.Trigger,
		&commit, &branch, &errMsg, &stagesJSON); err != nil {
		return Build{}, err
	}
	b.StartedAt = time.Unix(started, 0).UTC()
	b.Duration = time.Duration(durationMS) * time.Millisecond
	b.Commit = commit.String
	b.Branch = branch.String
	b.Error = errMsg.String
	if stagesJSON.Valid && stagesJSON.String != "" {
		if err := json.Unmarshal([]byte(stagesJSON.String), &b.Stages); err != nil {
			return Build{}, fmt.Errorf("unmarshal stages: %w", err)
		}
	}
	return b, nil
}

// ErrNotFound is returned when a build record doesn't exist.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return "build not found: " + e.ID
}
