package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
)

func migrate(ctx context.Context, cfg appConfig, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: bookshelf migrate [up|down|status]")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	action := "up"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	db, err := openStore(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer db.Close()

	switch action {
	case "up":
		return migrations.Up(ctx, db.DB(), db.Dialect(), log)
	case "down":
		return migrations.Down(ctx, db.DB(), db.Dialect(), log)
	case "status":
		statuses, err := migrations.List(ctx, db.DB(), db.Dialect())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED")
		for _, s := range statuses {
			fmt.Fprintf(w, "%d\t%s\t%t\n", s.Version, s.File, s.Applied)
		}
		return w.Flush()
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown migrate action %q", errUsage, action)
	}
}
