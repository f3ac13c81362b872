package postgres

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/pg"
)

var _ oauth.UserStorage = (*Store)(nil)

func (s *Store) GetUserByProvider(ctx context.Context, provider, providerID string) (*oauth.User, error) {
	var u oauth.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, picture, provider, provider_id, created_at
		FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Picture, &u.Provider, &u.ProviderID, &u.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, oauth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *oauth.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, picture, provider, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.Picture, u.Provider, u.ProviderID, u.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return oauth.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
