package oauth

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// RevokeMethod selects how a provider's revoke endpoint is called.
type RevokeMethod int

const (
	// RevokeNone means the provider offers no revocation; logout is local only.
	RevokeNone RevokeMethod = iota
	// RevokeGet sends the token as a query parameter.
	RevokeGet
	// RevokePost sends the token in a form body with HTTP Basic client auth.
	RevokePost
)

func (m RevokeMethod) String() string {
	switch m {
	case RevokeGet:
		return "GET"
	case RevokePost:
		return "POST"
	default:
		return "none"
	}
}

const (
	ProviderReddit = "reddit"
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// Provider describes one OAuth2 authorization-code provider.
type Provider struct {
	Name         string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RevokeURL    string
	RevokeMethod RevokeMethod

	ClientID     string
	ClientSecret string
	Scope        string
	RedirectURL  string

	// UsernameField is the user-info JSON field shown as display name.
	UsernameField string
	// IDField is the user-info JSON field with the provider's user id ("id" if empty).
	IDField string
	// EmailField is the optional user-info JSON field with the email address.
	EmailField string
	// AuthScheme prefixes the token in the user-info Authorization header.
	AuthScheme string
	// AuthParams are extra query parameters for the authorization URL.
	AuthParams map[string]string
}

func (p Provider) validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidProvider)
	case p.AuthURL == "" || p.TokenURL == "" || p.UserInfoURL == "":
		return fmt.Errorf("%w: %s: auth, token and user-info endpoints are required", ErrInvalidProvider, p.Name)
	case p.ClientID == "" || p.ClientSecret == "":
		return fmt.Errorf("%w: %s: missing client credentials", ErrInvalidProvider, p.Name)
	case p.RedirectURL == "":
		return fmt.Errorf("%w: %s: missing redirect url", ErrInvalidProvider, p.Name)
	case p.RevokeMethod != RevokeNone && p.RevokeURL == "":
		return fmt.Errorf("%w: %s: revoke method %s without revoke url", ErrInvalidProvider, p.Name, p.RevokeMethod)
	}
	return nil
}

func (p Provider) idField() string {
	if p.IDField == "" {
		return "id"
	}
	return p.IDField
}

func (p Provider) authScheme() string {
	if p.AuthScheme == "" {
		return "Bearer"
	}
	return p.AuthScheme
}

// oauth2Config presents the client credentials with HTTP Basic auth.
func (p Provider) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       strings.Fields(p.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Registry is an immutable set of providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry validates providers and indexes them by name.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.providers[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate provider %q", ErrInvalidProvider, p.Name)
		}
		p.AuthParams = maps.Clone(p.AuthParams)
		r.providers[p.Name] = p
	}
	return r, nil
}

// Get returns a copy of the named provider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	p.AuthParams = maps.Clone(p.AuthParams)
	return p, nil
}

// Names lists registered providers in alphabetical order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.providers))
}

// DefaultProviders returns the built-in endpoint table for reddit, github and
// google with redirect URLs under baseURL. Credentials are left empty.
func DefaultProviders(baseURL string) []Provider {
	baseURL = strings.TrimRight(baseURL, "/")
	callback := func(name string) string { return baseURL + "/login/" + name + "/callback" }

	return []Provider{
		{
			Name:          ProviderReddit,
			AuthURL:       "https://ssl.reddit.com/api/v1/authorize",
			TokenURL:      "https://ssl.reddit.com/api/v1/access_token",
			UserInfoURL:   "https://oauth.reddit.com/api/v1/me",
			RevokeURL:     "https://ssl.reddit.com/api/v1/revoke_token",
			RevokeMethod:  RevokePost,
			Scope:         "identity",
			RedirectURL:   callback(ProviderReddit),
			UsernameField: "name",
			AuthScheme:    "bearer",
			AuthParams:    map[string]string{"duration": "temporary"},
		},
		{
			Name:          ProviderGitHub,
			AuthURL:       github.Endpoint.AuthURL,
			TokenURL:      github.Endpoint.TokenURL,
			UserInfoURL:   "https://api.github.com/user",
			RevokeMethod:  RevokeNone,
			Scope:         "read:user user:email",
			RedirectURL:   callback(ProviderGitHub),
			UsernameField: "login",
			EmailField:    "email",
			AuthScheme:    "token",
		},
		{
			Name:          ProviderGoogle,
			AuthURL:       google.Endpoint.AuthURL,
			TokenURL:      google.Endpoint.TokenURL,
			UserInfoURL:   "https://www.googleapis.com/oauth2/v1/userinfo",
			RevokeURL:     "https://accounts.google.com/o/oauth2/revoke",
			RevokeMethod:  RevokeGet,
			Scope:         "openid profile email",
			RedirectURL:   callback(ProviderGoogle),
			UsernameField: "name",
			EmailField:    "email",
			AuthScheme:    "Bearer",
		},
	}
}
