package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("empty redis url, use REDIS_URL env var")
	ErrInvalidURL         = errors.New("invalid redis url")
	// ErrNotReady is returned when every ping attempt of Connect failed.
	ErrNotReady           = errors.New("redis did not answer ping")
	ErrHealthcheckFailed  = errors.New("redis healthcheck failed")
)
