package oauth

import "time"

// Config is the environment-driven part of the OAuth setup.
type Config struct {
	// BaseURL is the public origin callbacks are registered under.
	BaseURL string `env:"OAUTH_BASE_URL" envDefault:"http://localhost:65010"`
	// SecretsFile is a YAML file with client credentials per provider.
	SecretsFile string        `env:"OAUTH_SECRETS_FILE" envDefault:"client_secrets.yaml"`
	HTTPTimeout time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
	UserAgent   string        `env:"OAUTH_USER_AGENT" envDefault:"bookshelf/1.0"`
}
