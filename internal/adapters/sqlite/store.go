package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	_ "modernc.org/sqlite"
)

// DefaultPath is the default location of the attributes database.
const DefaultPath = ".cadence/attributes.db"

// Store implements ports.AttributeStore on an embedded SQLite database.
// One row per key; writes are upserts, so the last write wins.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (or reuses) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attributes database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS attributes (
		key TEXT PRIMARY KEY,
		doc JSON NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`)
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Set upserts the document of key.
func (s *Store) Set(ctx context.Context, key string, doc domain.Attributes) error {
	if key == "" {
		return fmt.Errorf("attributes key cannot be empty")
	}
	if doc == nil {
		doc = domain.Attributes{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attributes (key, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save attributes: %w", err)
	}
	return nil
}

// Get returns the document of key.
func (s *Store) Get(ctx context.Context, key string) (domain.Attributes, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM attributes WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAttributesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}

	var doc domain.Attributes
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}
	if doc == nil {
		doc = domain.Attributes{}
	}
	return doc, nil
}

// Delete removes the row of key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attributes WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete attributes: %w", err)
	}
	return nil
}

// Keys returns every stored key, oldest write first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM attributes ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
