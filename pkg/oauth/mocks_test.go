package oauth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

// MockUserStorage is a mock implementation of oauth.UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) GetUserByProvider(ctx context.Context, provider, providerID string) (*oauth.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.User), args.Error(1)
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user *oauth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
