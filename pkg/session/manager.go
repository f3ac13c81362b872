package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bookshelf/pkg/cookie"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

// Manager ties a Transport and a Store together.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
	logger        *slog.Logger
}

// New creates a session manager. It panics without WithCookieManager.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.cookieManager == nil {
		panic("session: cookie manager is required")
	}
	m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)

	return m
}

// Load returns the session referenced by the request, if any.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Ensure returns the current session or starts an anonymous one.
// Sessions older than TouchThreshold get their idle expiry extended.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Load(ctx, r)
	if err == nil {
		if time.Since(session.LastActivityAt) >= m.config.TouchThreshold {
			if err := m.touch(ctx, w, session); err != nil {
				m.logger.WarnContext(ctx, "failed to extend session", logger.Error(err))
			}
		}
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return nil, err
	}

	session, err = m.create(ctx, nil)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.Timeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}
	return session, nil
}

// Save persists session data.
func (m *Manager) Save(ctx context.Context, session *Session) error {
	if err := m.store.Update(ctx, session); err != nil {
		return err
	}
	session.modified = false
	return nil
}

// Authenticate attaches userID to the session and rotates its token.
// Pending data changes are persisted with it.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, session *Session, userID uuid.UUID) error {
	session.UserID = &userID
	return m.rotate(ctx, w, session)
}

// Deauthenticate detaches the user and rotates the token, keeping the session.
func (m *Manager) Deauthenticate(ctx context.Context, w http.ResponseWriter, session *Session) error {
	session.UserID = nil
	return m.rotate(ctx, w, session)
}

func (m *Manager) rotate(ctx context.Context, w http.ResponseWriter, session *Session) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	oldToken := session.Token
	idle, maxLifetime := m.config.Timeouts(session.IsAuthenticated())

	session.Token = token
	session.Touch()
	session.ExpiresAt = expiry(session.CreatedAt, time.Now(), idle, maxLifetime)

	if err := m.store.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to store rotated session: %w", err)
	}
	session.modified = false

	if oldToken != "" {
		if err := m.store.Delete(ctx, oldToken); err != nil {
			m.logger.WarnContext(ctx, "failed to delete previous session", logger.Error(err))
		}
	}

	return m.transport.SetToken(w, session.Token, idle)
}

func (m *Manager) touch(ctx context.Context, w http.ResponseWriter, session *Session) error {
	idle, maxLifetime := m.config.Timeouts(session.IsAuthenticated())
	session.Touch()
	session.ExpiresAt = expiry(session.CreatedAt, time.Now(), idle, maxLifetime)

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}
	return m.transport.SetToken(w, session.Token, idle)
}

func (m *Manager) create(ctx context.Context, userID *uuid.UUID) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, maxLifetime := m.config.Timeouts(userID != nil)
	now := time.Now()

	session := NewSession(token, userID, expiry(now, now, idle, maxLifetime).Sub(now))
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// expiry is the earlier of the idle deadline and the absolute lifetime.
func expiry(createdAt, now time.Time, idle, maxLifetime time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(maxLifetime)

	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
