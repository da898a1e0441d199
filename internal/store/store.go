// Package store persists the match lists, search history and small bits of
// state in a local SQLite database. It is the list facility the rest of the
// tool reads from and replaces into; a list is always swapped wholesale,
// never edited row by row.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/runger/grepl/internal/config"
	"github.com/runger/grepl/internal/matchlist"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	scope TEXT    NOT NULL,
	idx   INTEGER NOT NULL,
	file  TEXT    NOT NULL,
	line  INTEGER NOT NULL,
	col   INTEGER NOT NULL,
	text  TEXT    NOT NULL,
	PRIMARY KEY (scope, idx)
);

CREATE TABLE IF NOT EXISTS searches (
	id      TEXT    PRIMARY KEY,
	raw     TEXT    NOT NULL,
	pattern TEXT    NOT NULL,
	at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// SearchRecord is one remembered search invocation.
type SearchRecord struct {
	ID      string
	Raw     string
	Pattern string
	At      time.Time
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	return config.DefaultPaths().DatabaseFile()
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the stored list for scope with list, atomically. Tombstones
// are stored as empty rows so positions survive the round trip.
func (s *Store) Replace(scope string, list matchlist.List) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin list swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("failed to clear list: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (scope, idx, file, line, col, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range list {
		if _, err := stmt.ExecContext(ctx, scope, i, e.File, e.Line, e.Col, e.Text); err != nil {
			return fmt.Errorf("failed to store entry %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// List returns the stored list for scope in positional order. A scope with
// no stored search yields an empty list.
func (s *Store) List(scope string) (matchlist.List, error) {
	rows, err := s.db.Query(
		`SELECT file, line, col, text FROM matches WHERE scope = ? ORDER BY idx`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	defer rows.Close()

	var list matchlist.List
	for rows.Next() {
		var e matchlist.Entry
		if err := rows.Scan(&e.File, &e.Line, &e.Col, &e.Text); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// RecordSearch appends one invocation to the search history.
func (s *Store) RecordSearch(rec SearchRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO searches (id, raw, pattern, at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Raw, rec.Pattern, rec.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// History returns the most recent searches, newest first.
func (s *Store) History(limit int) ([]SearchRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, raw, pattern, at FROM searches ORDER BY at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var recs []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var at int64
		if err := rows.Scan(&rec.ID, &rec.Raw, &rec.Pattern, &at); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		rec.At = time.UnixMilli(at)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetState writes one key of small persistent state.
func (s *Store) SetState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state %s: %w", key, err)
	}
	return nil
}

// State reads one key of persistent state; absent keys read as "".
func (s *Store) State(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return value, nil
}
