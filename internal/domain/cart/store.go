package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Store owns one cart. Every mutation runs to completion, including the
// storage write, before the next operation on the same Store begins.
//
// Persistence is best-effort: with a nil Storage nothing is read or written,
// and storage failures are logged and dropped. The in-memory items remain the
// source of truth for the lifetime of the Store.
type Store struct {
	mu      sync.Mutex
	key     string
	storage Storage
	items   []LineItem
	open    bool
	// stale is set while the saved cart could not be read. Writes are held
	// back so an unread cart is never overwritten.
	stale bool
}

// NewStore creates an empty Store persisting under key. Call Initialize to
// load a previously saved cart.
func NewStore(key string, storage Storage) *Store {
	return &Store{key: key, storage: storage}
}

// Key returns the storage key of the cart.
func (s *Store) Key() string {
	return s.key
}

// Initialize replaces the in-memory items with the saved cart. A missing or
// malformed saved value yields an empty cart. It reports false when storage
// could not be read; the items are then left untouched and the call may be
// retried.
func (s *Store) Initialize(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.load(ctx)
	s.stale = !ok
	if ok {
		s.items = items
	}
	return ok
}

// AddItem increments the quantity of the line with the same id, or appends a
// new line with quantity 1. It returns the resulting line.
func (s *Store) AddItem(ctx context.Context, p ItemSummary) LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var line LineItem
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Quantity++
		line = s.items[i]
	} else {
		line = LineItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: 1,
		}
		s.items = append(s.items, line)
	}

	trace.SpanFromContext(ctx).AddEvent("cart.add", trace.WithAttributes(
		attribute.Int("product.id", p.ID),
		attribute.Int("cart.quantity", line.Quantity),
	))
	s.persist(ctx)
	return line
}

// RemoveItem deletes the line with the given id. Removing an absent id is a
// no-op. It reports whether a line was removed.
func (s *Store) RemoveItem(ctx context.Context, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(item LineItem) bool {
		return item.ID == id
	})
	removed := len(s.items) != n

	trace.SpanFromContext(ctx).AddEvent("cart.remove", trace.WithAttributes(
		attribute.Int("product.id", id),
		attribute.Bool("cart.removed", removed),
	))
	s.persist(ctx)
	return removed
}

// UpdateQuantity sets the quantity of the line with the given id to
// max(1, quantity). Lines are only removed through RemoveItem. It returns the
// updated line and false when no line has the id.
func (s *Store) UpdateQuantity(ctx context.Context, id, quantity int) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		line  LineItem
		found bool
	)
	if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity = max(1, quantity)
		line, found = s.items[i], true
	}

	trace.SpanFromContext(ctx).AddEvent("cart.update", trace.WithAttributes(
		attribute.Int("product.id", id),
		attribute.Int("cart.quantity", line.Quantity),
	))
	s.persist(ctx)
	return line, found
}

// Clear empties the cart and persists the empty collection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	trace.SpanFromContext(ctx).AddEvent("cart.clear")
	s.persist(ctx)
}

// Toggle flips the drawer visibility flag and returns the new value. The flag
// is not persisted.
func (s *Store) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = !s.open
	return s.open
}

// IsOpen reports the drawer visibility flag.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

// Totals derives the current item count and amounts.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ComputeTotals(s.items)
}

// State returns a consistent copy of items, visibility and totals.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Items:  slices.Clone(s.items),
		Open:   s.open,
		Totals: ComputeTotals(s.items),
	}
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(item LineItem) bool {
		return item.ID == id
	})
}

// load must be called with s.mu held. The read outlives cancellation of ctx
// so that an aborted request cannot be mistaken for an empty cart.
func (s *Store) load(ctx context.Context) ([]LineItem, bool) {
	if s.storage == nil {
		return nil, true
	}

	lg := zctx.From(ctx)
	data, err := s.storage.Get(context.WithoutCancel(ctx), s.key)
	switch {
	case errors.Is(err, ErrNotStored):
		return nil, true
	case err != nil:
		lg.Warn("Load cart", zap.String("key", s.key), zap.Error(err))
		return nil, false
	}

	items, err := DecodeItems(data)
	if err != nil {
		lg.Debug("Discard malformed cart", zap.String("key", s.key), zap.Error(err))
		return nil, true
	}
	return items, true
}

// persist must be called with s.mu held. Write failures are dropped on
// purpose: the cart keeps working in memory when the medium is unavailable.
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	if s.stale {
		zctx.From(ctx).Debug("Skip persisting unread cart", zap.String("key", s.key))
		return
	}
	if err := s.storage.Set(ctx, s.key, EncodeItems(s.items)); err != nil {
		zctx.From(ctx).Warn("Persist cart", zap.String("key", s.key), zap.Error(err))
	}
}
