// Package redis implements cart storage on Redis. Carts expire after a
// configurable idle period.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/go-redis/redis/v8"

	"github.com/xenking/velostore/internal/domain/cart"
)

var _ cart.Storage = (*Storage)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL is refreshed on every write. Zero keeps carts forever.
	TTL time.Duration
}

// Storage implements cart.Storage with plain string keys.
type Storage struct {
	client *goredis.Client
	ttl    time.Duration
}

// New wraps an existing client.
func New(client *goredis.Client, ttl time.Duration) *Storage {
	return &Storage{client: client, ttl: ttl}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, opts Options) (*Storage, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", opts.Addr, err)
	}
	return New(client, opts.TTL), nil
}

// Get implements cart.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, cart.ErrNotStored
		}
		return nil, fmt.Errorf("getting cart %q: %w", key, err)
	}
	return value, nil
}

// Set implements cart.Storage.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("setting cart %q: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Storage) Close() error {
	return s.client.Close()
}
