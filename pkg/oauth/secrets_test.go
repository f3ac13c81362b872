package oauth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

const secretsYAML = `
github:
  client_id: gh-id
  client_secret: gh-secret
google:
  client_id: g-id
`

func TestLoadSecrets(t *testing.T) {
	t.Parallel()

	t.Run("reads yaml file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "client_secrets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(secretsYAML), 0o600))

		secrets, err := oauth.LoadSecrets(path)
		require.NoError(t, err)
		assert.Equal(t, oauth.Credentials{ClientID: "gh-id", ClientSecret: "gh-secret"}, secrets["github"])
		assert.Equal(t, "g-id", secrets["google"].ClientID)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		t.Parallel()

		secrets, err := oauth.LoadSecrets(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, secrets)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := oauth.ParseSecrets([]byte("github: [unterminated"))
		require.Error(t, err)
	})
}

func TestSecretsWithEnv(t *testing.T) {
	t.Parallel()

	secrets, err := oauth.ParseSecrets([]byte(secretsYAML))
	require.NoError(t, err)

	env := map[string]string{
		"GOOGLE_OAUTH_CLIENT_SECRET": "g-secret",
		"REDDIT_OAUTH_CLIENT_ID":     "r-id",
		"REDDIT_OAUTH_CLIENT_SECRET": "r-secret",
		"GITHUB_OAUTH_CLIENT_ID":     "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	merged := secrets.WithEnv(lookup, "reddit", "github", "google")
	assert.Equal(t, oauth.Credentials{ClientID: "r-id", ClientSecret: "r-secret"}, merged["reddit"])
	assert.Equal(t, oauth.Credentials{ClientID: "gh-id", ClientSecret: "gh-secret"}, merged["github"])
	assert.Equal(t, oauth.Credentials{ClientID: "g-id", ClientSecret: "g-secret"}, merged["google"])

	_, ok := secrets["reddit"]
	assert.False(t, ok, "WithEnv must not modify the receiver")
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	secrets := oauth.Secrets{
		"github": {ClientID: "gh-id", ClientSecret: "gh-secret"},
		"google": {ClientID: "g-id"},
	}

	reg, err := oauth.BuildRegistry(oauth.Config{BaseURL: "http://localhost:65010"}, secrets)
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, reg.Names())

	p, err := reg.Get("github")
	require.NoError(t, err)
	assert.Equal(t, "gh-id", p.ClientID)
	assert.Equal(t, "http://localhost:65010/login/github/callback", p.RedirectURL)
}
