package oauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the local account an external identity resolves to.
// (Provider, ProviderID) is unique.
type User struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Picture    string
	Provider   string
	ProviderID string
	CreatedAt  time.Time
}

// Profile is what a provider's user-info endpoint says about the user.
type Profile struct {
	ProviderID string
	Username   string
	Email      string
}

// Identity is the outcome of a completed login, as kept in the session.
type Identity struct {
	Provider    string
	ProviderID  string
	AccessToken string
	UserID      uuid.UUID
	Username    string
	Picture     string
}

// UserStorage persists users keyed by (provider, provider id).
type UserStorage interface {
	// GetUserByProvider returns ErrUserNotFound when no user matches.
	GetUserByProvider(ctx context.Context, provider, providerID string) (*User, error)
	// CreateUser returns ErrUserExists when (provider, provider id) is taken.
	CreateUser(ctx context.Context, user *User) error
}

// Session is the per-browser key/value store the flow reads and writes.
// *session.Session satisfies it.
type Session interface {
	GetString(key string) (string, bool)
	Set(key string, value any)
	Delete(key string)
}

// Session keys shared by every provider.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyPicture  = "picture"
	KeyProvider = "provider"
)

// StateKey holds the pending anti-forgery state for provider.
func StateKey(provider string) string { return "oauth." + provider + ".state" }

// TokenKey holds the access token issued by provider.
func TokenKey(provider string) string { return "oauth." + provider + ".token" }

// ProviderIDKey holds the user's id at provider.
func ProviderIDKey(provider string) string { return "oauth." + provider + ".provider_id" }

// CurrentIdentity reads the identity stored by a successful callback.
func CurrentIdentity(sess Session) (Identity, bool) {
	provider, ok := sess.GetString(KeyProvider)
	if !ok || provider == "" {
		return Identity{}, false
	}
	rawID, _ := sess.GetString(KeyUserID)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return Identity{}, false
	}

	id := Identity{Provider: provider, UserID: userID}
	id.Username, _ = sess.GetString(KeyUsername)
	id.Picture, _ = sess.GetString(KeyPicture)
	id.AccessToken, _ = sess.GetString(TokenKey(provider))
	id.ProviderID, _ = sess.GetString(ProviderIDKey(provider))
	return id, true
}

func storeIdentity(sess Session, id Identity) {
	sess.Delete(StateKey(id.Provider))
	sess.Set(TokenKey(id.Provider), id.AccessToken)
	sess.Set(ProviderIDKey(id.Provider), id.ProviderID)
	sess.Set(KeyUserID, id.UserID.String())
	sess.Set(KeyUsername, id.Username)
	sess.Set(KeyPicture, id.Picture)
	sess.Set(KeyProvider, id.Provider)
}

func clearIdentity(sess Session, provider string) {
	sess.Delete(StateKey(provider))
	sess.Delete(TokenKey(provider))
	sess.Delete(ProviderIDKey(provider))
	for _, key := range []string{KeyUserID, KeyUsername, KeyPicture, KeyProvider} {
		sess.Delete(key)
	}
}
