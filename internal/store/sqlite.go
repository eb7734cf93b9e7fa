// Package store keeps the history of batch runs in SQLite.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create db directory")
	}

	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// single writer
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scene TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			direction TEXT NOT NULL DEFAULT '',
			side TEXT NOT NULL,
			views INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			placed INTEGER NOT NULL DEFAULT 0,
			diagnostics_json TEXT NOT NULL DEFAULT '[]',
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			view_id TEXT NOT NULL,
			view_name TEXT NOT NULL DEFAULT '',
			element_id TEXT NOT NULL,
			approach TEXT NOT NULL DEFAULT '',
			handle TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL DEFAULT 0,
			kind TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			diagnostics_json TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			element_id TEXT NOT NULL,
			view_id TEXT NOT NULL,
			face_found INTEGER NOT NULL DEFAULT 0,
			best_alignment REAL NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			evaluations_json TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
