// Package sqlite provides a cache store backed by a single SQLite table,
// for callers that want durable cached responses shared across processes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/crmarques/restmodel/cache"
	"github.com/crmarques/restmodel/faults"
)

var _ cache.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	entry_key   TEXT PRIMARY KEY,
	entry_value TEXT NOT NULL
);`

type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, faults.NewTypedError(faults.ValidationError, "sqlite cache store requires a database path", nil)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, internalError("failed to open cache database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, internalError("failed to initialize cache schema", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT entry_value FROM cache_entries WHERE entry_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, internalError("failed to read cache entry", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (entry_key, entry_value) VALUES (?, ?)
		 ON CONFLICT(entry_key) DO UPDATE SET entry_value = excluded.entry_value`,
		key, value)
	if err != nil {
		return internalError("failed to write cache entry", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE entry_key = ?", key); err != nil {
		return internalError("failed to remove cache entry", err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return internalError("failed to close cache database", err)
	}
	return nil
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
