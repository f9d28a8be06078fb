// Package store persists planning sessions and their artifacts (plans,
// critiques, execution records) in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite handle. Safe for concurrent use; writes serialize
// on a single connection, which is how SQLite wants to be driven anyway.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// A single connection sidesteps SQLITE_BUSY and makes the PRAGMA below
	// apply to every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates all tables if they don't exist.
func (s *Store) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			brief TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			model TEXT NOT NULL,
			content TEXT NOT NULL,
			consensus_score REAL,
			selected INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_session_id ON plans(session_id)`,

		`CREATE TABLE IF NOT EXISTS critiques (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			plan_id TEXT NOT NULL,
			critic_model TEXT NOT NULL,
			score REAL NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
			FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_critiques_session_id ON critiques(session_id)`,

		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			model TEXT NOT NULL,
			status TEXT NOT NULL,
			latency_ms INTEGER NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_session_id ON executions(session_id)`,
	}

	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute SQL: %s, error: %w", table, err)
		}
	}
	return nil
}

// timeText stores timestamps as RFC3339 text, SQLite's least surprising
// option.
func timeText(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimeText(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
