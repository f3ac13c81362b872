package catalog

import "errors"

var (
	ErrGenreNotFound = errors.New("catalog.genre_not_found")
	ErrGenreExists   = errors.New("catalog.genre_exists")
	ErrBookNotFound  = errors.New("catalog.book_not_found")
	// ErrUnauthorized is returned for changes attempted without a user.
	ErrUnauthorized = errors.New("catalog.unauthorized")
	// ErrForbidden is returned when the user did not create the book.
	ErrForbidden = errors.New("catalog.forbidden")
)
