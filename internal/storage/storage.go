// Package storage persists plugin records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vulcanocraft/plugdex/internal/record"
)

// ErrNotFound is returned when no record matches the key.
var ErrNotFound = errors.New("plugin not found")

// Store is a SQLite-backed plugin record store. A plugin is keyed by its URL
// and owner: two owners can track the same plugin independently.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the store at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plugins (
		url TEXT NOT NULL,
		owner TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		document TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (url, owner)
	);
	CREATE INDEX IF NOT EXISTS idx_plugins_owner ON plugins(owner);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert stores the record, replacing any previous version under the same
// URL and owner.
func (s *Store) Upsert(ctx context.Context, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plugins (url, owner, category, document, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url, owner) DO UPDATE SET
			category = excluded.category,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		rec.URL, rec.Owner, rec.Category, string(document), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plugin: %w", err)
	}

	return nil
}

// Get returns the record stored under the URL and owner.
func (s *Store) Get(ctx context.Context, rawURL, owner string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var document string

	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM plugins WHERE url = ? AND owner = ?",
		rawURL, owner,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to get plugin: %w", err)
	}

	return decode(document)
}

// List returns all stored records, oldest first.
func (s *Store) List(ctx context.Context) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT document FROM plugins ORDER BY updated_at, url",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scan(rows)
}

// ListByOwner returns the records tracked by one owner.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT document FROM plugins WHERE owner = ? ORDER BY updated_at, url",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scan(rows)
}

// Delete removes the record stored under the URL and owner.
func (s *Store) Delete(ctx context.Context, rawURL, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM plugins WHERE url = ? AND owner = ?",
		rawURL, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to delete plugin: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

func scan(rows *sql.Rows) ([]record.Record, error) {
	var records []record.Record

	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan plugin: %w", err)
		}

		rec, err := decode(document)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plugins: %w", err)
	}

	return records, nil
}

func decode(document string) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal([]byte(document), &rec); err != nil {
		return record.Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return rec, nil
}
