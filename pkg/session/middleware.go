package session

import (
	"net/http"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

// Middleware makes sure every request carries a session in its context and
// persists the session after the handler if its data was modified.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, err := m.Ensure(ctx, w, r)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to ensure session", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

		if sess.Modified() {
			if err := m.Save(ctx, sess); err != nil {
				m.logger.ErrorContext(ctx, "failed to save session", logger.Error(err))
			}
		}
	})
}

// RequireAuth passes authenticated requests to next and everything else to
// onFail. It expects Middleware to run first.
func RequireAuth(onFail http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok || !sess.IsAuthenticated() {
				onFail.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
