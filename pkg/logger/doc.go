// Package logger builds the application's *slog.Logger.
//
// New returns a logger configured through functional options: output format
// (text or json), minimum level, static attributes and ContextExtractor
// callbacks that pull request-scoped values (request id, user id) out of the
// context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "bookshelf"),
//		logger.WithContextExtractors(requestid.LogExtractor),
//	)
//	log.InfoContext(ctx, "book created", logger.BookID(book.ID), logger.UserID(user.ID))
//
// When a Sentry DSN is configured, NewWithSentry fans records out to stdout
// and Sentry; errors become Sentry issues, warnings are kept as breadcrumbs.
//
// Attribute helpers (Error, Component, Event, Provider, ...) keep key names
// consistent across packages. Error returns an empty attribute for a nil
// error, so it can be passed unconditionally.
package logger
