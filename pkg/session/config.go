package session

import "time"

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// Store selects the backend: "memory" or "redis".
	Store string `env:"SESSION_STORE" envDefault:"memory"`

	AnonIdleTimeout time.Duration `env:"SESSION_ANON_IDLE_TIMEOUT" envDefault:"30m"`
	AnonMaxLifetime time.Duration `env:"SESSION_ANON_MAX_LIFETIME" envDefault:"24h"`

	AuthIdleTimeout time.Duration `env:"SESSION_AUTH_IDLE_TIMEOUT" envDefault:"2h"`
	AuthMaxLifetime time.Duration `env:"SESSION_AUTH_MAX_LIFETIME" envDefault:"720h"`

	// TouchThreshold is the minimum time between sliding-expiry extensions.
	TouchThreshold time.Duration `env:"SESSION_TOUCH_THRESHOLD" envDefault:"5m"`

	// CleanupInterval for expired sessions in the memory store (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig mirrors the envDefault values.
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		Store:           StoreMemory,
		AnonIdleTimeout: 30 * time.Minute,
		AnonMaxLifetime: 24 * time.Hour,
		AuthIdleTimeout: 2 * time.Hour,
		AuthMaxLifetime: 30 * 24 * time.Hour,
		TouchThreshold:  5 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Timeouts returns idle and max lifetime for the given session state.
func (c Config) Timeouts(authenticated bool) (idle, max time.Duration) {
	if authenticated {
		return c.AuthIdleTimeout, c.AuthMaxLifetime
	}
	return c.AnonIdleTimeout, c.AnonMaxLifetime
}
