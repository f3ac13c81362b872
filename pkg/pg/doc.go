// Package pg wraps pgxpool with a retrying Connect, a healthcheck,
// a transaction helper and predicates for common postgres errors.
package pg
