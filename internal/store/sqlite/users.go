package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

var _ oauth.UserStorage = (*Store)(nil)

func (s *Store) GetUserByProvider(ctx context.Context, provider, providerID string) (*oauth.User, error) {
	var (
		u       oauth.User
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, picture, provider, provider_id, created_at
		FROM users WHERE provider = ? AND provider_id = ?`,
		provider, providerID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Picture, &u.Provider, &u.ProviderID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *oauth.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, picture, provider, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, u.Picture, u.Provider, u.ProviderID, toMillis(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return oauth.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
