package session

import "context"

// Store persists sessions by token.
type Store interface {
	// Create stores a new session; ErrSessionExists if the token is taken.
	Create(ctx context.Context, session *Session) error

	// Get returns the session for token, or ErrSessionNotFound / ErrSessionExpired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update replaces an existing session.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by token. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
