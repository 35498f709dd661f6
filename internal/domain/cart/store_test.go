package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockStorage struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{values: make(map[string][]byte)}
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotStored
	}
	return v, nil
}

func (m *mockStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// --- Helpers ---

var (
	roadBike = ItemSummary{ID: 1, Name: "Road Bike Pro", Price: "$2,999", Image: "bike1.jpg"}
	mtbBike  = ItemSummary{ID: 2, Name: "Mountain Beast", Price: "$3,499", Image: "bike2.jpg"}
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// --- Tests ---

func TestStore_Empty(t *testing.T) {
	s := NewStore("velo-cart", newMockStorage())

	st := s.State()
	assert.Empty(t, st.Items)
	assert.False(t, st.Open)
	assert.Equal(t, 0, st.TotalItems)
	assert.True(t, st.Total.IsZero())
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()
	s := NewStore("velo-cart", newMockStorage())

	line := s.AddItem(ctx, roadBike)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "Road Bike Pro", line.Name)

	line = s.AddItem(ctx, roadBike)
	assert.Equal(t, 2, line.Quantity)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_AddSameItemNTimes(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{1, 2, 5, 17} {
		s := NewStore("velo-cart", nil)
		for range n {
			s.AddItem(ctx, roadBike)
		}
		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, n, items[0].Quantity)
		assert.Equal(t, n, s.Totals().TotalItems)
	}
}

func TestStore_TotalsScenario(t *testing.T) {
	ctx := context.Background()
	s := NewStore("velo-cart", newMockStorage())

	s.AddItem(ctx, roadBike)
	s.AddItem(ctx, roadBike)

	totals := s.Totals()
	assert.Equal(t, 2, totals.TotalItems)
	assert.True(t, d("5998").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, d("599.8").Equal(totals.Tax), "tax %s", totals.Tax)
	assert.True(t, d("6597.8").Equal(totals.Total), "total %s", totals.Total)
}

func TestStore_SubtotalOrderIndependent(t *testing.T) {
	ctx := context.Background()

	a := NewStore("a", nil)
	a.AddItem(ctx, roadBike)
	a.AddItem(ctx, mtbBike)
	a.AddItem(ctx, roadBike)

	b := NewStore("b", nil)
	b.AddItem(ctx, mtbBike)
	b.AddItem(ctx, roadBike)
	b.AddItem(ctx, roadBike)

	assert.True(t, a.Totals().Subtotal.Equal(b.Totals().Subtotal))
	assert.True(t, d("9497").Equal(a.Totals().Subtotal))
}

func TestStore_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore("velo-cart", nil)

	s.AddItem(ctx, mtbBike)
	s.AddItem(ctx, roadBike)
	s.AddItem(ctx, mtbBike)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 1, items[1].ID)
}

func TestStore_RemoveItem(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	s := NewStore("velo-cart", storage)

	s.AddItem(ctx, roadBike)
	s.AddItem(ctx, mtbBike)

	assert.True(t, s.RemoveItem(ctx, 1))
	assert.False(t, s.RemoveItem(ctx, 1), "second remove is a no-op")
	assert.False(t, s.RemoveItem(ctx, 999))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
	assert.JSONEq(t,
		`[{"id":2,"name":"Mountain Beast","price":"$3,499","image":"bike2.jpg","quantity":1}]`,
		string(storage.values["velo-cart"]))
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{name: "positive", quantity: 5, want: 5},
		{name: "one", quantity: 1, want: 1},
		{name: "zero clamps to one", quantity: 0, want: 1},
		{name: "negative clamps to one", quantity: -3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("velo-cart", nil)
			s.AddItem(ctx, roadBike)

			line, ok := s.UpdateQuantity(ctx, roadBike.ID, tt.quantity)
			require.True(t, ok)
			assert.Equal(t, tt.want, line.Quantity)
			assert.Equal(t, tt.want, s.Items()[0].Quantity)
		})
	}
}

func TestStore_UpdateQuantityMissing(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	s := NewStore("velo-cart", storage)
	s.AddItem(ctx, roadBike)

	_, ok := s.UpdateQuantity(ctx, 42, 3)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Items()[0].Quantity)
	assert.Equal(t, 2, storage.sets, "update persists even on a miss")
}

func TestStore_ClearThenInitialize(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()

	s := NewStore("velo-cart", storage)
	s.AddItem(ctx, roadBike)
	s.Clear(ctx)
	assert.Equal(t, "[]", string(storage.values["velo-cart"]))

	restored := NewStore("velo-cart", storage)
	restored.Initialize(ctx)
	assert.Empty(t, restored.Items())
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()

	s := NewStore("velo-cart", storage)
	s.AddItem(ctx, roadBike)
	s.AddItem(ctx, mtbBike)
	s.UpdateQuantity(ctx, mtbBike.ID, 3)

	restored := NewStore("velo-cart", storage)
	restored.Initialize(ctx)
	assert.Equal(t, s.Items(), restored.Items())
	assert.True(t, s.Totals().Total.Equal(restored.Totals().Total))
}

func TestStore_InitializeFallbacks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		storage Storage
		loaded  bool
	}{
		{name: "nil storage", storage: nil, loaded: true},
		{name: "nothing saved", storage: newMockStorage(), loaded: true},
		{name: "malformed json", storage: &mockStorage{values: map[string][]byte{"velo-cart": []byte("{not json")}}, loaded: true},
		{name: "wrong shape", storage: &mockStorage{values: map[string][]byte{"velo-cart": []byte(`{"id":1}`)}}, loaded: true},
		{name: "storage error", storage: &mockStorage{getErr: errors.New("disk gone")}, loaded: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("velo-cart", tt.storage)
			assert.Equal(t, tt.loaded, s.Initialize(ctx))
			assert.Empty(t, s.Items())
		})
	}
}

func TestStore_InitializeCancelledContext(t *testing.T) {
	storage := newMockStorage()
	storage.values["velo-cart"] = EncodeItems([]LineItem{{ID: 1, Name: "Aero Road Pro", Price: "$2,999", Quantity: 2}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore("velo-cart", storage)
	require.True(t, s.Initialize(ctx))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].Quantity)
}

func TestStore_UnreadCartIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	saved := EncodeItems([]LineItem{{ID: 1, Name: "Aero Road Pro", Price: "$2,999", Quantity: 2}})
	storage := &mockStorage{
		values: map[string][]byte{"velo-cart": saved},
		getErr: errors.New("connection reset"),
	}

	s := NewStore("velo-cart", storage)
	require.False(t, s.Initialize(ctx))

	s.AddItem(ctx, mtbBike)
	assert.Equal(t, string(saved), string(storage.values["velo-cart"]), "unread cart must survive")
	assert.Zero(t, storage.sets)

	storage.mu.Lock()
	storage.getErr = nil
	storage.mu.Unlock()

	require.True(t, s.Initialize(ctx))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)

	s.AddItem(ctx, mtbBike)
	assert.Equal(t, 1, storage.sets)
	assert.Len(t, s.Items(), 2)
}

func TestStore_WriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s := NewStore("velo-cart", &mockStorage{values: map[string][]byte{}, setErr: errors.New("quota exceeded")})

	s.AddItem(ctx, roadBike)
	s.AddItem(ctx, roadBike)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_Toggle(t *testing.T) {
	storage := newMockStorage()
	s := NewStore("velo-cart", storage)

	assert.True(t, s.Toggle())
	assert.True(t, s.IsOpen())
	assert.False(t, s.Toggle())
	assert.Zero(t, storage.sets, "visibility is not persisted")
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewStore("velo-cart", newMockStorage())

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			s.AddItem(ctx, roadBike)
		})
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}
