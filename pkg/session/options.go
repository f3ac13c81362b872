package session

import (
	"log/slog"

	"github.com/dmitrymomot/bookshelf/pkg/cookie"
)

// Option configures a Manager.
type Option func(*Manager)

func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithCookieManager sets the cookie manager for the default cookie transport.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
