// Package store selects the database backend and runs its migrations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
	"github.com/dmitrymomot/bookshelf/internal/store/postgres"
	"github.com/dmitrymomot/bookshelf/internal/store/sqlite"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/pg"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Config picks the backend. SQLite and Postgres settings are read from their
// own prefixes.
type Config struct {
	Driver string `env:"APP_DB_DRIVER" envDefault:"sqlite"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `env:"APP_DB_AUTO_MIGRATE" envDefault:"true"`
	SQLite      sqlite.Config
	Postgres    pg.Config
}

// Store is everything the application needs from a database.
type Store interface {
	catalog.Storage
	oauth.UserStorage

	DB() *sql.DB
	Dialect() migrations.Dialect
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return sqlite.Open(ctx, cfg.SQLite)
	case DriverPostgres:
		return postgres.Open(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Migrate applies pending migrations for the store's dialect.
func Migrate(ctx context.Context, s Store, log *slog.Logger) error {
	return migrations.Up(ctx, s.DB(), s.Dialect(), log)
}
