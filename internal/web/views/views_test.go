package views_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/web"
	"github.com/dmitrymomot/bookshelf/internal/web/views"
	"github.com/dmitrymomot/bookshelf/modules/account"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestBookPage_EscapesContent(t *testing.T) {
	t.Parallel()
	v := views.New()

	out := render(t, v.BookPage(web.BookPageParams{
		Page: web.Page{Title: "x", User: &oauth.Identity{Username: "ada", Provider: "github"}},
		Book: catalog.Book{ID: 7, Title: "Tom & Jerry", GenreName: "comedy", Description: "<b>bold</b>"},
	}))
	assert.Contains(t, out, "Tom &amp; Jerry")
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, out, `href="/genre/comedy/"`)
	assert.Contains(t, out, "ada")
	assert.NotContains(t, out, "/book/7-tom-jerry/edit")
}

func TestBookForm_ShowsErrors(t *testing.T) {
	t.Parallel()
	v := views.New()

	errs := handler.NewValidationError()
	errs.Add("title", "is required")
	params := web.BookFormParams{
		Action: "/genre/drama/new-book",
		Genres: []catalog.Genre{{Name: "comedy"}, {Name: "drama"}},
		Values: web.BookFormValues{Genre: "drama", Year: "1603"},
		Errors: errs,
	}

	partial := render(t, v.BookForm(params))
	assert.Contains(t, partial, `id="book-form"`)
	assert.Contains(t, partial, "is required")
	assert.Contains(t, partial, `<option value="drama" selected>`)
	assert.Contains(t, partial, `value="1603"`)
	assert.NotContains(t, partial, "<html")

	full := render(t, v.BookFormPage(params))
	assert.Contains(t, full, "<html")
	assert.Contains(t, full, "New book")
}

func TestLoginPage(t *testing.T) {
	t.Parallel()
	v := views.New()

	out := render(t, v.LoginPage(account.LoginPageParams{Providers: []string{"github", "reddit"}, Next: "/genre/a b/"}))
	assert.Contains(t, out, `href="/login/github?next=%2fgenre%2fa%20b%2f"`)
	assert.Contains(t, out, "Log in with Reddit")

	out = render(t, v.LoginPage(account.LoginPageParams{}))
	assert.Contains(t, out, "No login providers are configured.")
}

func TestErrorViews(t *testing.T) {
	t.Parallel()
	v := views.New()

	out := render(t, v.ErrorPage(handler.ErrorPageParams{StatusCode: 404, Message: "catalog.book_not_found", RequestID: "req-1"}))
	assert.Contains(t, out, "This book does not exist.")
	assert.Contains(t, out, "req-1")

	out = render(t, v.ErrorPage(handler.ErrorPageParams{StatusCode: 418, Message: "teapot"}))
	assert.Contains(t, out, "I&#39;m a teapot")

	out = render(t, v.ErrorToast(handler.ErrorToastParams{Message: "oauth.state_mismatch", Type: "warning"}))
	assert.Contains(t, out, `class="toast warning"`)
	assert.Contains(t, out, "tampered")
}
