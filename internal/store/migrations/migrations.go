// Package migrations holds the embedded schema for every supported database
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

// Dialect names a schema flavour.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var (
	ErrUnknownDialect   = errors.New("unknown migration dialect")
	ErrApplyMigrations  = errors.New("failed to apply migrations")
	ErrRevertMigrations = errors.New("failed to revert migration")
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

func newProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	var gd goose.Dialect
	switch dialect {
	case SQLite:
		gd = goose.DialectSQLite3
	case Postgres:
		gd = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	fsys, err := fs.Sub(files, string(dialect))
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(gd, db, fsys)
}

// Up applies all pending migrations and logs each one.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, log *slog.Logger) error {
	p, err := newProvider(db, dialect)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	results, err := p.Up(ctx)
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			slog.String("file", r.Source.Path),
			logger.Duration(r.Duration),
		)
	}
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

// Down reverts the most recent migration.
func Down(ctx context.Context, db *sql.DB, dialect Dialect, log *slog.Logger) error {
	p, err := newProvider(db, dialect)
	if err != nil {
		return errors.Join(ErrRevertMigrations, err)
	}

	r, err := p.Down(ctx)
	if err != nil {
		return errors.Join(ErrRevertMigrations, err)
	}
	log.InfoContext(ctx, "migration reverted", slog.String("file", r.Source.Path), logger.Duration(r.Duration))
	return nil
}

// Status describes one migration file.
type Status struct {
	Version int64
	File    string
	Applied bool
}

func List(ctx context.Context, db *sql.DB, dialect Dialect) ([]Status, error) {
	p, err := newProvider(db, dialect)
	if err != nil {
		return nil, err
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version: s.Source.Version,
			File:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
