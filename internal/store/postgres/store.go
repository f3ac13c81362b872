// Package postgres stores the catalog and users in PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
	"github.com/dmitrymomot/bookshelf/pkg/pg"
)

// Store implements catalog.Storage and oauth.UserStorage.
type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// Open connects with pg.Connect.
func Open(ctx context.Context, cfg pg.Config) (*Store, error) {
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: stdlib.OpenDBFromPool(pool)}
}

// DB exposes the pool through database/sql for goose. It shares the pool's
// connections.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() migrations.Dialect { return migrations.Postgres }

func (s *Store) Ping(ctx context.Context) error { return pg.Healthcheck(s.pool)(ctx) }

func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	return err
}
