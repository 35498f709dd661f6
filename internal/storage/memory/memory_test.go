package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/search"
)

const smallCatalog = `
products:
  - id: 7
    name: Commuter One
    category: City
    price: "899.50"
    performance: 1
pages:
  - id: help
    title: Help Center
    category: Support
    to: /support/help
    icon: help
`

func TestDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	c, err := DefaultCatalog()
	require.NoError(t, err)

	products, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, "Aero Speedster 500", products[0].Name)
	assert.Equal(t, "$3,299", products[0].PriceLabel())
	assert.Equal(t, product.CategoryRoad, products[0].Category)
	assert.Equal(t, "Carbon Fiber Toray T800", products[0].Specs.Frame)
	assert.True(t, products[0].Featured.Enabled)

	pages, err := c.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 6)
	assert.Equal(t, "story", pages[0].ID)
	assert.Equal(t, search.CategoryCompany, pages[0].Category)
	assert.Equal(t, "/contact", pages[5].To)
}

func TestCatalog_GetByID(t *testing.T) {
	ctx := context.Background()
	c, err := DefaultCatalog()
	require.NoError(t, err)

	p, err := c.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Mountain King XT", p.Name)

	_, err = c.GetByID(ctx, 99)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalog_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c, err := DefaultCatalog()
	require.NoError(t, err)

	a, _ := c.List(ctx)
	a[0].Name = "mutated"
	b, _ := c.List(ctx)
	assert.Equal(t, "Aero Speedster 500", b[0].Name)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "products: [\n"},
		{name: "bad price", yaml: "products:\n  - {id: 1, name: A, category: Road, price: cheap}\n"},
		{name: "unknown category", yaml: "products:\n  - {id: 1, name: A, category: Tandem, price: \"10\"}\n"},
		{name: "duplicate id", yaml: "products:\n  - {id: 1, name: A, category: Road, price: \"10\"}\n  - {id: 1, name: B, category: Road, price: \"20\"}\n"},
		{name: "missing name", yaml: "products:\n  - {id: 1, category: Road, price: \"10\"}\n"},
		{name: "page without title", yaml: "pages:\n  - {id: help}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
		})
	}

	_, err := ParseCatalog([]byte("products:\n  - {id: 1, name: A, category: Tandem, price: \"10\"}\n"))
	require.ErrorIs(t, err, product.ErrUnknownCategory)
}

func TestCatalog_ReloadKeepsSnapshotOnError(t *testing.T) {
	c, err := NewCatalog([]byte(smallCatalog))
	require.NoError(t, err)

	require.Error(t, c.Reload([]byte("products: [")))
	require.Len(t, c.Snapshot().Products, 1)
	assert.Equal(t, "Commuter One", c.Snapshot().Products[0].Name)
}

func TestOpenCatalog_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(smallCatalog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	c, err := OpenCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Snapshot().Products, 1)
	assert.Equal(t, "$899.50", c.Snapshot().Products[0].PriceLabel())
}

func TestCatalog_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCatalog), 0o600))

	c, err := OpenCatalog(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, path, 20*time.Millisecond) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	updated := smallCatalog + `
  - id: contact
    title: Contact Us
    category: Support
    to: /contact
    icon: email
`
	// The watcher may not be registered yet; keep rewriting until it is.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(updated), 0o600)
		return len(c.Snapshot().Pages) == 2
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("products: ["), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, c.Snapshot().Pages, 2, "broken file keeps previous snapshot")
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	kv := NewKV()

	_, err := kv.Get(ctx, "velo-cart:a")
	require.ErrorIs(t, err, cart.ErrNotStored)

	value := []byte(`[]`)
	require.NoError(t, kv.Set(ctx, "velo-cart:a", value))
	value[0] = '{'

	got, err := kv.Get(ctx, "velo-cart:a")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	require.NoError(t, kv.Ping(ctx))
}
