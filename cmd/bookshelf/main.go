// Command bookshelf runs the book catalog.
//
//	bookshelf [serve]                       start the web server (default)
//	bookshelf migrate [up|down|status]      manage the database schema
//	bookshelf seed [-genres f] [-books f]   import the starter catalog
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/bookshelf/internal/store"
	"github.com/dmitrymomot/bookshelf/pkg/clientip"
	"github.com/dmitrymomot/bookshelf/pkg/config"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/requestid"
)

const sentryFlushTimeout = 2 * time.Second

// appConfig is shared by every command.
type appConfig struct {
	// Env is "development", "staging" or "production". Development turns on
	// debug logging.
	Env  string `env:"APP_ENV" envDefault:"production"`
	Name string `env:"APP_NAME" envDefault:"bookshelf"`
	// LogLevel and LogFormat override the APP_ENV defaults when set.
	LogLevel  string        `env:"LOG_LEVEL"`
	LogFormat logger.Format `env:"LOG_FORMAT"`
	Sentry    logger.SentryConfig
	DB        store.Config
}

var errUsage = errors.New("usage: bookshelf [serve|migrate|seed] [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	cmd, rest := "serve", args
	if len(args) > 0 {
		cmd, rest = args[0], args[1:]
	}

	opts, err := loggerOptions(cfg, cmd)
	if err != nil {
		return err
	}
	log := logger.NewWithSentry(cfg.Sentry, opts...)
	defer sentry.Flush(sentryFlushTimeout)

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, log)
	case "migrate":
		err = migrate(ctx, cfg, log, rest)
	case "seed":
		err = seedCatalog(ctx, cfg, log, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		log.ErrorContext(ctx, "command failed", logger.Error(err))
	}
	return err
}

// loggerOptions writes logs to stderr so command output on stdout stays clean.
func loggerOptions(cfg appConfig, cmd string) ([]logger.Option, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithOutput(os.Stderr),
		logger.WithAttr(slog.String("command", cmd)),
		logger.WithContextExtractors(requestid.LogExtractor, clientip.LogExtractor),
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	switch cfg.LogFormat {
	case "":
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(cfg.LogFormat))
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	return opts, nil
}

// openStore connects to the configured database and, unless disabled,
// brings its schema up to date.
func openStore(ctx context.Context, cfg appConfig, log *slog.Logger, autoMigrate bool) (store.Store, error) {
	db, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if autoMigrate {
		if err := store.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
