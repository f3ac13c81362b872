package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/pkg/session"
)

func TestManager_Middleware(t *testing.T) {
	t.Parallel()

	manager, _ := setupManager(t)

	write := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		require.True(t, ok)
		sess.Set("visited", "yes")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	write.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	loaded, err := manager.Load(context.Background(), withCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, "yes", loaded.Data["visited"], "modified session is saved after the handler")
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	manager, _ := setupManager(t)

	denied := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	protected := session.RequireAuth(denied)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(sess.UserID.String()))
	}))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		manager.Middleware(protected).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/new", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("no session in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/new", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		userID := uuid.New()
		sess := session.NewSession("tok", &userID, 0)
		req := httptest.NewRequest(http.MethodGet, "/new", nil)
		req = req.WithContext(session.WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID.String(), rec.Body.String())
	})
}
