package oauth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Credentials are the client id and secret issued by a provider.
type Credentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Secrets maps provider names to credentials:
//
//	github:
//	  client_id: abc
//	  client_secret: s3cret
type Secrets map[string]Credentials

// LoadSecrets reads a secrets file. A missing file yields empty secrets so
// credentials can come from the environment alone.
func LoadSecrets(path string) (Secrets, error) {
	if path == "" {
		return Secrets{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Secrets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth secrets: %w", err)
	}
	return ParseSecrets(data)
}

func ParseSecrets(data []byte) (Secrets, error) {
	secrets := Secrets{}
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse oauth secrets: %w", err)
	}
	return secrets, nil
}

// WithEnv overlays <PROVIDER>_OAUTH_CLIENT_ID and <PROVIDER>_OAUTH_CLIENT_SECRET
// for every name in providers. lookup is usually os.LookupEnv.
func (s Secrets) WithEnv(lookup func(string) (string, bool), providers ...string) Secrets {
	out := make(Secrets, len(s))
	for name, c := range s {
		out[name] = c
	}
	for _, name := range providers {
		prefix := strings.ToUpper(name) + "_OAUTH_"
		c := out[name]
		if v, ok := lookup(prefix + "CLIENT_ID"); ok && v != "" {
			c.ClientID = v
		}
		if v, ok := lookup(prefix + "CLIENT_SECRET"); ok && v != "" {
			c.ClientSecret = v
		}
		if c != (Credentials{}) {
			out[name] = c
		}
	}
	return out
}

// BuildRegistry fills the built-in providers with secrets. Providers without
// complete credentials are left out.
func BuildRegistry(cfg Config, secrets Secrets) (*Registry, error) {
	var providers []Provider
	for _, p := range DefaultProviders(cfg.BaseURL) {
		c, ok := secrets[p.Name]
		if !ok || c.ClientID == "" || c.ClientSecret == "" {
			continue
		}
		p.ClientID, p.ClientSecret = c.ClientID, c.ClientSecret
		providers = append(providers, p)
	}
	return NewRegistry(providers...)
}
