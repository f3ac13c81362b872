package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/seed"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

// seedCatalog imports genres and books. Without flags the bundled starter
// data is used.
func seedCatalog(ctx context.Context, cfg appConfig, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	genres := fs.String("genres", "", "JSON file with genres (default: bundled data)")
	books := fs.String("books", "", "JSON file with books (default: bundled data)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := seed.FromFiles(*genres, *books)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := seed.New(catalog.NewService(db, catalog.WithLogger(log)), log).Run(ctx, src)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "seeding finished",
		logger.Event("seed"),
		slog.Bool("skipped", res.Skipped),
		slog.Int("genres", res.Genres),
		slog.Int("books", res.Books),
		slog.Int("rejected", res.RejectedItems),
	)
	return nil
}
