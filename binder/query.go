package binder

import "net/http"

// Query binds URL query parameters tagged `query:"name"`.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindStruct(v, "query", func(name string) (string, bool) {
			if !q.Has(name) {
				return "", false
			}
			return q.Get(name), true
		}, ErrInvalidQuery)
	}
}
