// Package views renders the bookshelf pages from embedded html/template
// files and exposes them as templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/web"
	"github.com/dmitrymomot/bookshelf/modules/account"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

//go:embed templates/*.html
var templateFS embed.FS

// messages are the texts shown for error keys.
var messages = map[string]string{
	"catalog.book_not_found":      "This book does not exist.",
	"catalog.genre_not_found":     "This genre does not exist.",
	"catalog.unauthorized":        "Please log in first.",
	"catalog.forbidden":           "Only the person who added this book can change it.",
	"catalog.genre_exists":        "This genre already exists.",
	"oauth.unknown_provider":      "This login provider is not supported.",
	"oauth.state_mismatch":        "The login request expired or was tampered with. Please try again.",
	"oauth.token_exchange_failed": "The login provider rejected the login.",
	"oauth.token_fetch_failed":    "Could not load your profile from the login provider.",
	"oauth.not_authenticated":     "You are not logged in.",
	"oauth.revocation_failed":     "The login provider refused to end the session.",
	"oauth.provider_unreachable":  "The login provider is not reachable right now.",
	"not_found":                   "Page not found.",
	"method_not_allowed":          "Method not allowed.",
	"bad_request":                 "The request could not be understood.",
	"too_many_requests":           "Too many attempts. Please wait a moment and try again.",
	"internal_server_error":       "Something went wrong on our side.",
}

type formField struct {
	Name, Label, Value, Error string
}

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"title": func(s string) string {
		return cases.Title(language.English).String(s)
	},
	"page": func(title string, user *oauth.Identity) web.Page {
		return web.Page{Title: title, User: user}
	},
	"field": func(name, label, value string, errs handler.ValidationError) formField {
		return formField{Name: name, Label: label, Value: value, Error: errs.Get(name)}
	},
	"message": message,
}).ParseFS(templateFS, "templates/*.html"))

func message(key string, status int) string {
	if text, ok := messages[key]; ok {
		return text
	}
	if status > 0 {
		if text := http.StatusText(status); text != "" {
			return text
		}
	}
	return key
}

func component[P any](name string) func(P) templ.Component {
	return func(p P) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			return templates.ExecuteTemplate(w, name, p)
		})
	}
}

// New returns every view the router needs.
func New() web.Views {
	return web.Views{
		HomePage:       component[web.HomePageParams]("home"),
		GenrePage:      component[web.GenrePageParams]("genre"),
		BookPage:       component[web.BookPageParams]("book"),
		BookFormPage:   component[web.BookFormParams]("book_form_page"),
		BookForm:       component[web.BookFormParams]("book_form"),
		DeleteBookPage: component[web.DeleteBookParams]("delete_book"),
		LoginPage:      component[account.LoginPageParams]("login"),
		ErrorPage:      component[handler.ErrorPageParams]("error"),
		ErrorToast:     component[handler.ErrorToastParams]("error_toast"),
	}
}
