package session

import "errors"

var (
	// ErrInvalidSession indicates a malformed session was passed to a store.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionNotFound indicates no session was found.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrSessionExists indicates a store already holds a session with the same token.
	ErrSessionExists = errors.New("session.already_exists")

	// ErrUnknownStore is returned for an unsupported SESSION_STORE value.
	ErrUnknownStore = errors.New("session.unknown_store")
)
