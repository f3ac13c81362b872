package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/bookshelf/pkg/cookie"
)

// CookieTransport stores the token in an encrypted cookie.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
	secure  bool
	options []cookie.Option
}

func NewCookieTransport(cookies *cookie.Manager, name string, secure bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookies: cookies,
		name:    name,
		secure:  secure,
		options: opts,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookies.GetEncrypted(r, t.name)
	if err != nil || token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithHTTPOnly(true),
		// Lax keeps the cookie on the top-level redirect back from the provider.
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	opts = append(opts, t.options...)

	return t.cookies.SetEncrypted(w, t.name, token, opts...)
}
