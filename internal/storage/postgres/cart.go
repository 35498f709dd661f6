package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/velostore/internal/domain/cart"
)

const (
	getCartSQL = `SELECT value FROM cart_storage WHERE key = $1`

	setCartSQL = `INSERT INTO cart_storage (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

var _ cart.Storage = (*CartStorage)(nil)

// CartStorage implements cart.Storage on the cart_storage table.
type CartStorage struct {
	pool *pgxpool.Pool
}

// NewCartStorage returns a CartStorage that uses the given pool.
func NewCartStorage(pool *pgxpool.Pool) *CartStorage {
	return &CartStorage{pool: pool}
}

// Get implements cart.Storage.
func (s *CartStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.pool.QueryRow(ctx, getCartSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotStored
		}
		return nil, fmt.Errorf("getting cart %q: %w", key, err)
	}
	return value, nil
}

// Set implements cart.Storage.
func (s *CartStorage) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, setCartSQL, key, value); err != nil {
		return fmt.Errorf("setting cart %q: %w", key, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *CartStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
