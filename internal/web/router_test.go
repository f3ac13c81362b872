package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/seed"
	"github.com/dmitrymomot/bookshelf/internal/store/migrations"
	"github.com/dmitrymomot/bookshelf/internal/store/sqlite"
	"github.com/dmitrymomot/bookshelf/internal/web"
	"github.com/dmitrymomot/bookshelf/internal/web/views"
	"github.com/dmitrymomot/bookshelf/pkg/cookie"
	"github.com/dmitrymomot/bookshelf/pkg/httpserver"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/ratelimiter"
	"github.com/dmitrymomot/bookshelf/pkg/session"
)

// fakeFlow logs in whoever the callback code names.
type fakeFlow struct {
	users map[string]uuid.UUID
}

func (f *fakeFlow) Providers() []string { return []string{"github"} }

func (f *fakeFlow) BeginLogin(_ context.Context, sess oauth.Session, provider string) (string, error) {
	if provider != "github" {
		return "", oauth.ErrUnknownProvider
	}
	sess.Set(oauth.StateKey(provider), "state")
	return "https://github.example/authorize?state=state", nil
}

func (f *fakeFlow) HandleCallback(_ context.Context, sess oauth.Session, provider, state, code string) (oauth.Identity, error) {
	if pending, ok := sess.GetString(oauth.StateKey(provider)); !ok || pending != state {
		return oauth.Identity{}, oauth.ErrStateMismatch
	}
	userID, ok := f.users[code]
	if !ok {
		return oauth.Identity{}, oauth.ErrTokenExchangeFailed
	}
	sess.Delete(oauth.StateKey(provider))
	sess.Set(oauth.TokenKey(provider), "tok-"+code)
	sess.Set(oauth.KeyProvider, provider)
	sess.Set(oauth.KeyUserID, userID.String())
	sess.Set(oauth.KeyUsername, code)
	return oauth.Identity{Provider: provider, UserID: userID, Username: code, AccessToken: "tok-" + code}, nil
}

func (f *fakeFlow) EndLogin(_ context.Context, sess oauth.Session, provider string) error {
	for _, key := range []string{oauth.TokenKey(provider), oauth.KeyProvider, oauth.KeyUserID, oauth.KeyUsername} {
		sess.Delete(key)
	}
	return nil
}

func newServer(t *testing.T, opts ...func(*web.Dependencies)) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.Config{Path: ":memory:", BusyTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db.DB(), db.Dialect(), logger.Discard()))

	flow := &fakeFlow{users: map[string]uuid.UUID{}}
	for _, name := range []string{"alice", "bob"} {
		u := &oauth.User{ID: uuid.New(), Name: name, Provider: "github", ProviderID: name, CreatedAt: time.Now()}
		require.NoError(t, db.CreateUser(ctx, u))
		flow.users[name] = u.ID
	}

	svc := catalog.NewService(db)
	_, err = seed.New(svc, logger.Discard()).Run(ctx, seed.Defaults())
	require.NoError(t, err)

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	sessStore := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = sessStore.Close() })

	deps := web.Dependencies{
		Logger:       logger.Discard(),
		Catalog:      svc,
		Flow:         flow,
		Sessions:     session.New(session.WithCookieManager(cookies), session.WithStore(sessStore)),
		Views:        views.New(),
		HealthChecks: map[string]httpserver.Check{"db": db.Ping},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv := httptest.NewServer(web.NewRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func postForm(t *testing.T, c *http.Client, u string, form url.Values, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, u, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func login(t *testing.T, srv *httptest.Server, c *http.Client, who string) {
	t.Helper()
	resp, _ := get(t, c, srv.URL+"/login/github")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	resp, _ = get(t, c, srv.URL+"/login/github/callback?state=state&code="+who)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestHome(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	resp, body := get(t, newClient(t), srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Contains(t, body, `href="/genre/fantasy/"`)
	assert.Contains(t, body, "Fantasy")
	assert.Contains(t, body, "War and Peace")
	assert.Contains(t, body, "Log in")
}

func TestGenrePage(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	c := newClient(t)

	for _, path := range []string{"/genre/fantasy", "/genre/fantasy/"} {
		resp, body := get(t, c, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Game of Thrones")
		assert.Contains(t, body, "Lord of rings")
		assert.NotContains(t, body, "War and Peace")
		assert.NotContains(t, body, "Add a book")
	}

	resp, body := get(t, c, srv.URL+"/genre/poetry/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "This genre does not exist.")
}

func TestBookPage(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	c := newClient(t)

	resp, _ := get(t, c, srv.URL+"/book/1")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/book/1-game-of-thrones", resp.Header.Get("Location"))

	resp, _ = get(t, c, srv.URL+"/book/1-old-title")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/book/1-game-of-thrones", resp.Header.Get("Location"))

	resp, body := get(t, c, srv.URL+"/book/1-game-of-thrones")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "George Martin")
	assert.Contains(t, body, "1996")
	assert.NotContains(t, body, "/edit")

	for _, path := range []string{"/book/99", "/book/abc"} {
		resp, _ = get(t, c, srv.URL+path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestProtectedPages_RedirectToLogin(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	c := newClient(t)

	resp, _ := get(t, c, srv.URL+"/genre/fantasy/new-book")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next="+url.QueryEscape("/genre/fantasy/new-book"), resp.Header.Get("Location"))

	resp, _ = get(t, c, srv.URL+"/book/1-game-of-thrones/edit")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?next="))
}

func TestBookLifecycle(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	alice := newClient(t)
	login(t, srv, alice, "alice")

	resp, body := get(t, alice, srv.URL+"/genre/fantasy/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Add a book")
	assert.Contains(t, body, "alice")

	resp, body = get(t, alice, srv.URL+"/genre/fantasy/new-book")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="book-form"`)
	assert.Contains(t, body, `<option value="fantasy" selected>`)

	resp, body = postForm(t, alice, srv.URL+"/genre/fantasy/new-book", url.Values{
		"title": {"Dune"}, "year": {"nineteen"}, "genre": {"fantasy"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "must be a number")
	assert.Contains(t, body, `value="Dune"`)

	resp, body = postForm(t, alice, srv.URL+"/genre/fantasy/new-book", url.Values{
		"title": {""}, "year": {"1965"}, "genre": {"fantasy"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "is required")

	resp, _ = postForm(t, alice, srv.URL+"/genre/fantasy/new-book", url.Values{
		"title": {"Dune"}, "author": {"Frank Herbert"}, "year": {"1965"}, "genre": {"fantasy"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/book/4-dune", resp.Header.Get("Location"))

	resp, body = get(t, alice, srv.URL+"/book/4-dune")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Frank Herbert")
	assert.Contains(t, body, "/book/4-dune/edit")

	bob := newClient(t)
	login(t, srv, bob, "bob")
	resp, _ = get(t, bob, srv.URL+"/book/4-dune/edit")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = postForm(t, bob, srv.URL+"/book/4-dune/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = get(t, alice, srv.URL+"/book/4-dune/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Frank Herbert"`)
	assert.Contains(t, body, `value="1965"`)

	resp, _ = postForm(t, alice, srv.URL+"/book/4-dune/edit", url.Values{
		"title": {"Dune Messiah"}, "author": {"Frank Herbert"}, "year": {"1969"}, "genre": {"classic"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/book/4-dune-messiah", resp.Header.Get("Location"))

	resp, body = get(t, alice, srv.URL+"/book/4-dune-messiah/delete")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Delete Dune Messiah?")

	resp, _ = postForm(t, alice, srv.URL+"/book/4-dune-messiah/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/genre/classic/", resp.Header.Get("Location"))

	resp, _ = get(t, alice, srv.URL+"/book/4")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenreNamesAreEscapedInLinks(t *testing.T) {
	t.Parallel()
	srv := newServer(t, func(d *web.Dependencies) {
		_, err := d.Catalog.CreateGenre(context.Background(), "science fiction", "")
		require.NoError(t, err)
	})
	alice := newClient(t)
	login(t, srv, alice, "alice")

	_, body := get(t, alice, srv.URL+"/")
	assert.Contains(t, body, `href="/genre/science%20fiction/"`)

	resp, body := get(t, alice, srv.URL+"/genre/science%20fiction/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/genre/science%20fiction/new-book"`)

	resp, _ = postForm(t, alice, srv.URL+"/genre/science%20fiction/new-book", url.Values{
		"title": {"Foundation"}, "genre": {"science fiction"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/book/4-foundation", resp.Header.Get("Location"))

	_, body = get(t, alice, srv.URL+"/book/4-foundation")
	assert.Contains(t, body, `href="/genre/science%20fiction/"`)

	resp, _ = postForm(t, alice, srv.URL+"/book/4-foundation/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/genre/science%20fiction/", resp.Header.Get("Location"))
}

func TestSeededBooks_EditableByAnyUser(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	bob := newClient(t)
	login(t, srv, bob, "bob")

	resp, body := get(t, bob, srv.URL+"/book/3-war-and-peace")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/book/3-war-and-peace/edit")

	resp, _ = get(t, bob, srv.URL+"/book/3-war-and-peace/edit")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookForm_DataStar(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	alice := newClient(t)
	login(t, srv, alice, "alice")

	resp, body := postForm(t, alice, srv.URL+"/genre/fantasy/new-book", url.Values{
		"title": {""}, "genre": {"fantasy"},
	}, "Accept", "text/event-stream")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, "#book-form")
	assert.Contains(t, body, "is required")
	assert.NotContains(t, body, "<html")
}

func TestAPI(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	c := newClient(t)

	resp, body := get(t, c, srv.URL+"/api/genres")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var genres struct {
		Data []catalog.Genre `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &genres))
	require.Len(t, genres.Data, 4)
	assert.Equal(t, "classic", genres.Data[0].Name)

	resp, body = get(t, c, srv.URL+"/api/genres/classic/books")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books struct {
		Data struct {
			Genre catalog.Genre  `json:"genre"`
			Books []catalog.Book `json:"books"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &books))
	assert.Equal(t, "classic", books.Data.Genre.Name)
	require.Len(t, books.Data.Books, 1)
	assert.Equal(t, "War and Peace", books.Data.Books[0].Title)

	resp, body = get(t, c, srv.URL+"/api/genres/comedy/books")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"books":[]`)

	resp, body = get(t, c, srv.URL+"/api/books/99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var failure struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &failure))
	assert.Equal(t, "catalog.book_not_found", failure.Error.Code)

	resp, body = get(t, c, srv.URL+"/api/nothing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"code":"not_found"`)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	resp, body := get(t, newClient(t), srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","checks":{"db":"ok"}}`, body)
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	resp, body := get(t, newClient(t), srv.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found.")
}

func TestLogin_RateLimited(t *testing.T) {
	t.Parallel()

	limits := ratelimiter.NewMemoryStore(0)
	t.Cleanup(func() { _ = limits.Close() })
	bucket, err := ratelimiter.NewBucket(limits, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	srv := newServer(t, func(d *web.Dependencies) { d.LoginLimiter = bucket })
	c := newClient(t)

	for range 2 {
		resp, _ := get(t, c, srv.URL+"/login/github")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	}
	resp, body := get(t, c, srv.URL+"/login/github")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Contains(t, body, "Too many attempts")

	// Catalog pages are not limited.
	resp, _ = get(t, c, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
