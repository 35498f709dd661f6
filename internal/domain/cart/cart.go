// Package cart implements the shopping cart: line-item bookkeeping, derived
// totals and the best-effort persistence round-trip to a key/value medium.
package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotStored is returned by Storage.Get when no value exists under a key.
var ErrNotStored = errors.New("cart not stored")

// LineItem is a single cart entry. Name, Price and Image are captured when the
// product is first added and are not re-read from the catalog afterwards.
type LineItem struct {
	ID       int
	Name     string
	Price    string
	Image    string
	Quantity int
}

// ItemSummary is the product data needed to add an item to the cart.
type ItemSummary struct {
	ID    int
	Name  string
	Price string
	Image string
}

// Storage is the persistence medium carts are saved to. Values are opaque
// encoded snapshots.
type Storage interface {
	// Get returns ErrNotStored when key holds no value.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// State is a point-in-time copy of a cart with its derived totals.
type State struct {
	Items []LineItem
	Open  bool
	Totals
}
