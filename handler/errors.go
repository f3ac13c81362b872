package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse means a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a message key shown to users.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest       = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized     = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden        = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound         = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrTooManyRequests  = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternal         = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)
