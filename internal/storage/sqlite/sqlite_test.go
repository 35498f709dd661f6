package sqlite

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/velostore/internal/domain/cart"
)

func TestStorage_Mock(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
			WithArgs("velo-cart:a").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err = New(db).Get(ctx, "velo-cart:a")
		require.ErrorIs(t, err, cart.ErrNotStored)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get stored", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
			WithArgs("velo-cart:a").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

		got, err := New(db).Get(ctx, "velo-cart:a")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbErr := errors.New("database is locked")
		mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
			WithArgs("velo-cart:a").
			WillReturnError(dbErr)

		_, err = New(db).Get(ctx, "velo-cart:a")
		require.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, cart.ErrNotStored)
	})

	t.Run("set", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(setSQL)).
			WithArgs("velo-cart:a", []byte(`[]`)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, New(db).Set(ctx, "velo-cart:a", []byte(`[]`)))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migrate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, New(db).Migrate(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cart.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "velo-cart:cli")
	require.ErrorIs(t, err, cart.ErrNotStored)

	store := cart.NewStore("velo-cart:cli", s)
	store.AddItem(ctx, cart.ItemSummary{ID: 1, Name: "Aero Speedster 500", Price: "$3,299"})
	store.AddItem(ctx, cart.ItemSummary{ID: 1, Name: "Aero Speedster 500", Price: "$3,299"})
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Ping(ctx))

	restored := cart.NewStore("velo-cart:cli", reopened)
	restored.Initialize(ctx)
	items := restored.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}
