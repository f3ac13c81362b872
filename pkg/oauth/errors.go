package oauth

import (
	"errors"
	"net/http"
)

var (
	ErrUnknownProvider     = errors.New("oauth.unknown_provider")
	ErrStateMismatch       = errors.New("oauth.state_mismatch")
	ErrTokenExchangeFailed = errors.New("oauth.token_exchange_failed")
	ErrTokenFetchFailed    = errors.New("oauth.token_fetch_failed")
	ErrNotAuthenticated    = errors.New("oauth.not_authenticated")
	ErrRevocationFailed    = errors.New("oauth.revocation_failed")
	ErrProviderUnreachable = errors.New("oauth.provider_unreachable")

	// ErrUserNotFound is the explicit miss of UserStorage.GetUserByProvider.
	ErrUserNotFound = errors.New("oauth.user_not_found")
	// ErrUserExists is returned by UserStorage.CreateUser when (provider, provider id) is taken.
	ErrUserExists = errors.New("oauth.user_exists")

	ErrInvalidProvider = errors.New("oauth.invalid_provider")
)

// HTTPStatus maps a flow error to the status code the web layer should answer with.
// Unreachable providers win over the step that failed.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrProviderUnreachable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, ErrStateMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTokenExchangeFailed),
		errors.Is(err, ErrTokenFetchFailed),
		errors.Is(err, ErrRevocationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
