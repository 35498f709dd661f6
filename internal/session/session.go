// Package session keeps the per-client state of the storefront: one cart and
// one toast queue per session id.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/notify"
)

// DefaultKeyPrefix is the storage key prefix of persisted carts.
const DefaultKeyPrefix = "velo-cart"

// Config controls session lifetime.
type Config struct {
	// KeyPrefix is prepended to the session id to form the cart storage key.
	KeyPrefix string
	// IdleTimeout is how long an unused session stays in memory. Its cart
	// remains in storage and is reloaded on next access.
	IdleTimeout time.Duration
	// ToastTTL is the toast auto-dismiss delay.
	ToastTTL time.Duration
}

// Session is the in-memory state of one client.
type Session struct {
	ID     string
	Cart   *cart.Store
	Toasts *notify.Queue

	loadMu   sync.Mutex
	loaded   bool
	lastSeen time.Time
}

// Registry creates sessions on first use and evicts idle ones.
type Registry struct {
	cfg     Config
	storage cart.Storage
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	active    metric.Int64UpDownCounter
	mutations metric.Int64Counter
}

// NewRegistry creates a Registry persisting carts to storage. storage may be
// nil, in which case carts live only in memory. A nil meter provider disables
// metrics.
func NewRegistry(cfg Config, storage cart.Storage, mp metric.MeterProvider) (*Registry, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if mp == nil {
		mp = noop.NewMeterProvider()
	}

	meter := mp.Meter("github.com/xenking/velostore/internal/session")
	active, err := meter.Int64UpDownCounter("velostore.sessions.active",
		metric.WithDescription("Sessions held in memory"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create active sessions counter")
	}
	mutations, err := meter.Int64Counter("velostore.cart.mutations",
		metric.WithDescription("Cart mutations by operation"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cart mutations counter")
	}

	return &Registry{
		cfg:       cfg,
		storage:   storage,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		active:    active,
		mutations: mutations,
	}, nil
}

// Key returns the cart storage key of a session id.
func (r *Registry) Key(id string) string {
	return r.cfg.KeyPrefix + ":" + id
}

// Get returns the session for id, creating it and loading its saved cart on
// first access. A load that fails on a storage error is retried on the next
// Get.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{
			ID:     id,
			Cart:   cart.NewStore(r.Key(id), r.storage),
			Toasts: notify.NewQueue(r.cfg.ToastTTL),
		}
		r.sessions[id] = s
		r.active.Add(ctx, 1)
	}
	s.lastSeen = r.now()
	r.mu.Unlock()

	s.loadMu.Lock()
	if !s.loaded {
		s.loaded = s.Cart.Initialize(ctx)
	}
	s.loadMu.Unlock()
	return s
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RecordMutation counts a cart mutation of the given operation.
func (r *Registry) RecordMutation(ctx context.Context, op string) {
	r.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// Evict drops sessions not accessed since now minus the idle timeout and
// returns how many were dropped.
func (r *Registry) Evict(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) < r.cfg.IdleTimeout {
			continue
		}
		s.Toasts.Close()
		delete(r.sessions, id)
		n++
	}
	if n > 0 {
		r.active.Add(ctx, int64(-n))
	}
	return n
}

// Run evicts idle sessions periodically until ctx is cancelled, then closes
// every remaining session.
func (r *Registry) Run(ctx context.Context) error {
	interval := max(r.cfg.IdleTimeout/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lg := zctx.From(ctx)
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case now := <-ticker.C:
			if n := r.Evict(ctx, now); n > 0 {
				lg.Debug("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close drops every session and stops their toast timers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.Toasts.Close()
		delete(r.sessions, id)
	}
}
