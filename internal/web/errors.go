package web

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/validator"
)

// msgYearNotNumber is reported when the year field is not a number.
const msgYearNotNumber = "must be a number"

// Classifiers maps catalog, login and validation errors to status codes.
func Classifiers() []handler.Classifier {
	return []handler.Classifier{classifyCatalog, classifyOAuth, classifyValidation}
}

func classifyCatalog(err error) (int, string, bool) {
	for _, c := range []struct {
		err    error
		status int
	}{
		{catalog.ErrBookNotFound, http.StatusNotFound},
		{catalog.ErrGenreNotFound, http.StatusNotFound},
		{catalog.ErrUnauthorized, http.StatusUnauthorized},
		{catalog.ErrForbidden, http.StatusForbidden},
		{catalog.ErrGenreExists, http.StatusConflict},
	} {
		if errors.Is(err, c.err) {
			return c.status, c.err.Error(), true
		}
	}
	return 0, "", false
}

func classifyOAuth(err error) (int, string, bool) {
	status := oauth.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		return 0, "", false
	}
	for _, sentinel := range []error{
		oauth.ErrProviderUnreachable,
		oauth.ErrUnknownProvider,
		oauth.ErrStateMismatch,
		oauth.ErrNotAuthenticated,
		oauth.ErrTokenExchangeFailed,
		oauth.ErrTokenFetchFailed,
		oauth.ErrRevocationFailed,
	} {
		if errors.Is(err, sentinel) {
			return status, sentinel.Error(), true
		}
	}
	return status, "oauth.failed", true
}

func classifyValidation(err error) (int, string, bool) {
	if validator.IsValidationError(err) {
		return http.StatusUnprocessableEntity, "validation_failed", true
	}
	return 0, "", false
}

// formErrors turns validator errors into the field map the forms render.
func formErrors(err error) (handler.ValidationError, bool) {
	ve := validator.ExtractValidationErrors(err)
	if len(ve) == 0 {
		return nil, false
	}
	return handler.ValidationError(ve.Values()), true
}
