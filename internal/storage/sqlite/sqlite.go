// Package sqlite implements cart storage in a local SQLite file. It backs the
// CLI cart and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/xenking/velostore/internal/domain/cart"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS cart_storage (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	getSQL = `SELECT value FROM cart_storage WHERE key = ?`

	setSQL = `INSERT INTO cart_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

var _ cart.Storage = (*Storage)(nil)

// Storage implements cart.Storage on a cart_storage table.
type Storage struct {
	db *sql.DB
}

// New wraps an open database. Call Migrate before first use.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Open opens (creating if needed) the SQLite file at path and migrates it.
func Open(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "create data dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the cart_storage table.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("creating cart_storage: %w", err)
	}
	return nil
}

// Get implements cart.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRowContext(ctx, getSQL, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cart.ErrNotStored
		}
		return nil, fmt.Errorf("getting cart %q: %w", key, err)
	}
	return value, nil
}

// Set implements cart.Storage.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, setSQL, key, value); err != nil {
		return fmt.Errorf("setting cart %q: %w", key, err)
	}
	return nil
}

// Ping checks the database handle.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}
