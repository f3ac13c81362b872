package binder

import (
	"fmt"
	"mime"
	"net/http"
)

const maxFormMemory = 1 << 20

// Form binds url-encoded or multipart form fields tagged `form:"name"`.
// Requests without a body (GET, HEAD) are skipped so one request type can
// serve both the form page and its submission.
//
//	type BookForm struct {
//		Title string `form:"title"`
//		Year  int    `form:"year"`
//	}
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return ErrBinderNotApplicable
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			err = r.ParseForm()
		case "multipart/form-data":
			err = r.ParseMultipartForm(maxFormMemory)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}

		return bindStruct(v, "form", func(name string) (string, bool) {
			values, ok := r.PostForm[name]
			if !ok || len(values) == 0 {
				return "", false
			}
			return values[0], true
		}, ErrInvalidForm)
	}
}
