//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
	"github.com/dmitrymomot/bookshelf/internal/store/postgres"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/pg"
)

func setupStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bookshelf_test"),
		tcpostgres.WithUsername("bookshelf"),
		tcpostgres.WithPassword("bookshelf"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.Open(ctx, pg.Config{
		ConnectionString: connStr,
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		RetryAttempts:    3,
		RetryInterval:    time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, migrations.Up(ctx, s.DB(), s.Dialect(), logger.Discard()))
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	t.Run("users", func(t *testing.T) {
		u := &oauth.User{
			ID:         uuid.New(),
			Name:       "ada",
			Email:      "ada@example.com",
			Provider:   "reddit",
			ProviderID: "t2_abc",
			CreatedAt:  time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.GetUserByProvider(ctx, "reddit", "t2_abc")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

		dup := *u
		dup.ID = uuid.New()
		require.ErrorIs(t, s.CreateUser(ctx, &dup), oauth.ErrUserExists)

		_, err = s.GetUserByProvider(ctx, "github", "t2_abc")
		require.ErrorIs(t, err, oauth.ErrUserNotFound)
	})

	t.Run("catalog", func(t *testing.T) {
		fantasy := &catalog.Genre{Name: "fantasy", Description: "Magic"}
		require.NoError(t, s.CreateGenre(ctx, fantasy))
		require.ErrorIs(t, s.CreateGenre(ctx, &catalog.Genre{Name: "fantasy"}), catalog.ErrGenreExists)

		n, err := s.CountGenres(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		now := time.Now().UTC().Truncate(time.Second)
		b := &catalog.Book{Title: "Lord of rings", GenreID: fantasy.ID, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.CreateBook(ctx, b))

		got, err := s.BookByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "fantasy", got.GenreName)
		assert.Nil(t, got.CreatedBy)

		orphan := &catalog.Book{Title: "Orphan", GenreID: fantasy.ID + 100, CreatedAt: now, UpdatedAt: now}
		require.ErrorIs(t, s.CreateBook(ctx, orphan), catalog.ErrGenreNotFound)
		assert.Zero(t, orphan.ID)

		moved := got
		moved.GenreID = fantasy.ID + 100
		require.ErrorIs(t, s.UpdateBook(ctx, &moved), catalog.ErrGenreNotFound)

		got.Title = "The Lord of the Rings"
		require.NoError(t, s.UpdateBook(ctx, &got))

		books, err := s.BooksByGenre(ctx, fantasy.ID)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "The Lord of the Rings", books[0].Title)

		recent, err := s.RecentBooks(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1)

		require.NoError(t, s.DeleteBook(ctx, b.ID))
		_, err = s.BookByID(ctx, b.ID)
		require.ErrorIs(t, err, catalog.ErrBookNotFound)
	})
}
