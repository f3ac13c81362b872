package binder

import (
	"fmt"
	"net/http"
)

// Path binds route parameters tagged `path:"name"` using extractor,
// usually chi.URLParam. Empty parameters are treated as absent.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor is nil", ErrInvalidPath)
		}
		return bindStruct(v, "path", func(name string) (string, bool) {
			value := extractor(r, name)
			return value, value != ""
		}, ErrInvalidPath)
	}
}
