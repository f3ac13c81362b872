package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/store"
	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
	"github.com/dmitrymomot/bookshelf/internal/store/sqlite"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sqlite by default", func(t *testing.T) {
		t.Parallel()

		s, err := store.Open(ctx, store.Config{SQLite: sqlite.Config{Path: ":memory:"}})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		assert.Equal(t, migrations.SQLite, s.Dialect())
		require.NoError(t, store.Migrate(ctx, s, logger.Discard()))
		require.NoError(t, s.Ping(ctx))

		svc := catalog.NewService(s)
		_, err = svc.CreateGenre(ctx, "drama", "")
		require.NoError(t, err)
		n, err := svc.CountGenres(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()

		_, err := store.Open(ctx, store.Config{Driver: "mysql"})
		require.ErrorIs(t, err, store.ErrUnknownDriver)
	})
}
