package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/sanitizer"
)

const maxResponseSize = 1 << 20

// Flow runs the authorization-code flow for every provider in a Registry.
// It holds no per-user state; everything per login lives in the Session
// passed to each call.
type Flow struct {
	registry *Registry
	users    UserStorage
	client   *http.Client
	logger   *slog.Logger
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithHTTPClient sets the client used for token, user-info and revoke calls.
func WithHTTPClient(c *http.Client) FlowOption {
	return func(f *Flow) {
		if c != nil {
			f.client = c
		}
	}
}

func WithLogger(l *slog.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFlow creates a Flow. The default HTTP client times out after 10 seconds.
func NewFlow(registry *Registry, users UserStorage, opts ...FlowOption) *Flow {
	f := &Flow{
		registry: registry,
		users:    users,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Component("oauth"))
	return f
}

// NewHTTPClient returns a client with cfg's timeout that sends cfg.UserAgent
// on every request. Reddit rejects requests without a descriptive agent.
func NewHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, next: http.DefaultTransport},
	}
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.agent != "" && r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(r)
}

// Providers lists the providers users can log in with.
func (f *Flow) Providers() []string {
	return f.registry.Names()
}

// BeginLogin stores a fresh state for provider in sess and returns the URL to
// redirect the browser to.
func (f *Flow) BeginLogin(ctx context.Context, sess Session, provider string) (string, error) {
	p, err := f.registry.Get(provider)
	if err != nil {
		return "", err
	}

	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(p.AuthParams))
	for k, v := range p.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	authURL := p.oauth2Config().AuthCodeURL(state, opts...)

	sess.Set(StateKey(p.Name), state)

	f.logger.DebugContext(ctx, "login started", logger.Provider(p.Name), logger.Event("oauth.begin"))
	return authURL, nil
}

// HandleCallback checks state against the pending one, exchanges code for a
// token, resolves the local user and stores the identity in sess, consuming
// the pending state in the same step. Any failure leaves sess untouched.
func (f *Flow) HandleCallback(ctx context.Context, sess Session, provider, state, code string) (Identity, error) {
	p, err := f.registry.Get(provider)
	if err != nil {
		return Identity{}, err
	}

	pending, _ := sess.GetString(StateKey(p.Name))
	if !statesMatch(pending, state) {
		f.logger.WarnContext(ctx, "oauth state mismatch", logger.Provider(p.Name), logger.Event("oauth.state_mismatch"))
		return Identity{}, ErrStateMismatch
	}

	token, err := f.exchange(ctx, p, code)
	if err != nil {
		f.logger.WarnContext(ctx, "token exchange failed", logger.Provider(p.Name), logger.Error(err))
		return Identity{}, err
	}

	profile, err := f.fetchProfile(ctx, p, token)
	if err != nil {
		f.logger.WarnContext(ctx, "user-info fetch failed", logger.Provider(p.Name), logger.Error(err))
		return Identity{}, err
	}

	user, err := f.ResolveUser(ctx, p.Name, profile)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		Provider:    p.Name,
		ProviderID:  profile.ProviderID,
		AccessToken: token,
		UserID:      user.ID,
		Username:    profile.Username,
		Picture:     user.Picture,
	}
	storeIdentity(sess, id)

	f.logger.InfoContext(ctx, "user logged in",
		logger.Provider(p.Name),
		logger.UserID(user.ID),
		logger.Event("oauth.login"),
	)
	return id, nil
}

// FetchIdentity calls provider's user-info endpoint with token.
func (f *Flow) FetchIdentity(ctx context.Context, provider, token string) (Profile, error) {
	p, err := f.registry.Get(provider)
	if err != nil {
		return Profile{}, err
	}
	return f.fetchProfile(ctx, p, token)
}

// ResolveUser returns the user for (provider, profile.ProviderID), creating it
// on the first login. Losing a creation race falls back to the winner's row.
func (f *Flow) ResolveUser(ctx context.Context, provider string, profile Profile) (*User, error) {
	if profile.ProviderID == "" {
		return nil, fmt.Errorf("%w: empty provider id", ErrTokenFetchFailed)
	}

	user, err := f.users.GetUserByProvider(ctx, provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	email := sanitizer.NormalizeEmail(profile.Email)
	user = &User{
		ID:         uuid.New(),
		Name:       profile.Username,
		Email:      email,
		Picture:    GravatarURL(email),
		Provider:   provider,
		ProviderID: profile.ProviderID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := f.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrUserExists) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		existing, lookupErr := f.users.GetUserByProvider(ctx, provider, profile.ProviderID)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up user after conflict: %w", lookupErr)
		}
		return existing, nil
	}

	f.logger.InfoContext(ctx, "user created", logger.Provider(provider), logger.UserID(user.ID))
	return user, nil
}

// EndLogin revokes the provider token and, once the provider confirms,
// removes the provider's keys and the identity from sess. Any failure keeps
// sess as it was.
func (f *Flow) EndLogin(ctx context.Context, sess Session, provider string) error {
	p, err := f.registry.Get(provider)
	if err != nil {
		return err
	}

	token, ok := sess.GetString(TokenKey(p.Name))
	if !ok || token == "" {
		return ErrNotAuthenticated
	}

	if err := f.revoke(ctx, p, token); err != nil {
		f.logger.WarnContext(ctx, "token revocation failed", logger.Provider(p.Name), logger.Error(err))
		return err
	}

	clearIdentity(sess, p.Name)
	f.logger.InfoContext(ctx, "user logged out", logger.Provider(p.Name), logger.Event("oauth.logout"))
	return nil
}

func (f *Flow) exchange(ctx context.Context, p Provider, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: empty authorization code", ErrTokenExchangeFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	tok, err := p.oauth2Config().Exchange(ctx, code)
	if err != nil {
		if isConnError(err) {
			return "", errors.Join(ErrTokenExchangeFailed, ErrProviderUnreachable, err)
		}
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}
	return tok.AccessToken, nil
}

func (f *Flow) fetchProfile(ctx context.Context, p Provider, token string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return Profile{}, errors.Join(ErrTokenFetchFailed, err)
	}
	req.Header.Set("Authorization", p.authScheme()+" "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Profile{}, errors.Join(ErrTokenFetchFailed, ErrProviderUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Profile{}, fmt.Errorf("%w: user-info returned status %d", ErrTokenFetchFailed, resp.StatusCode)
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return Profile{}, errors.Join(ErrTokenFetchFailed, err)
	}

	profile := Profile{
		ProviderID: stringField(body, p.idField()),
		Username:   stringField(body, p.UsernameField),
		Email:      stringField(body, p.EmailField),
	}
	if profile.ProviderID == "" {
		return Profile{}, fmt.Errorf("%w: user-info has no %q field", ErrTokenFetchFailed, p.idField())
	}
	if profile.Username == "" {
		profile.Username = profile.ProviderID
	}
	return profile, nil
}

func (f *Flow) revoke(ctx context.Context, p Provider, token string) error {
	var (
		req *http.Request
		err error
	)

	switch p.RevokeMethod {
	case RevokeNone:
		return nil
	case RevokeGet:
		var u *url.URL
		if u, err = url.Parse(p.RevokeURL); err != nil {
			return errors.Join(ErrRevocationFailed, err)
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	case RevokePost:
		form := url.Values{"token": {token}, "token_type_hint": {"access_token"}}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, p.RevokeURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.SetBasicAuth(p.ClientID, p.ClientSecret)
		}
	default:
		return fmt.Errorf("%w: unsupported revoke method %d", ErrRevocationFailed, p.RevokeMethod)
	}
	if err != nil {
		return errors.Join(ErrRevocationFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Join(ErrRevocationFailed, ErrProviderUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: revoke endpoint returned status %d", ErrRevocationFailed, resp.StatusCode)
	}
	return nil
}

// statesMatch is an exact, case-sensitive comparison; an empty pending state
// never matches.
func statesMatch(pending, got string) bool {
	if pending == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pending), []byte(got)) == 1
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func stringField(body map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := body[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func isConnError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}
