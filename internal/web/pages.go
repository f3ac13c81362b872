package web

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/modules/account"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

// Page is shared by every full page: the logged-in user, if any, and the
// document title.
type Page struct {
	Title string
	User  *oauth.Identity
}

type HomePageParams struct {
	Page
	Genres []catalog.Genre
	Recent []catalog.Book
}

type GenrePageParams struct {
	Page
	Genre catalog.Genre
	Books []catalog.Book
}

type BookPageParams struct {
	Page
	Book    catalog.Book
	CanEdit bool
}

// BookFormParams drives both the new-book and the edit-book form.
type BookFormParams struct {
	Page
	// Action is the URL the form posts to.
	Action string
	// Book is set when editing.
	Book   *catalog.Book
	Genres []catalog.Genre
	Values BookFormValues
	Errors handler.ValidationError
}

// BookFormValues are the raw field values echoed back into the form.
type BookFormValues struct {
	Title            string
	Author           string
	Year             string
	Genre            string
	CoverURL         string
	CoverAttribution string
	BuyURL           string
	Description      string
}

type DeleteBookParams struct {
	Page
	Book catalog.Book
}

// Views are the components the router renders. Every field is required.
type Views struct {
	HomePage       func(HomePageParams) templ.Component
	GenrePage      func(GenrePageParams) templ.Component
	BookPage       func(BookPageParams) templ.Component
	BookFormPage   func(BookFormParams) templ.Component
	BookForm       func(BookFormParams) templ.Component
	DeleteBookPage func(DeleteBookParams) templ.Component
	LoginPage      func(account.LoginPageParams) templ.Component
	ErrorPage      func(handler.ErrorPageParams) templ.Component
	ErrorToast     func(handler.ErrorToastParams) templ.Component
}

func newPage(ctx handler.Context, title string) Page {
	p := Page{Title: title}
	if id, ok := ctx.Identity(); ok {
		p.User = &id
	}
	return p
}

func formValues(in catalog.BookInput) BookFormValues {
	v := BookFormValues{
		Title:            in.Title,
		Author:           in.Author,
		Genre:            in.Genre,
		CoverURL:         in.CoverURL,
		CoverAttribution: in.CoverAttribution,
		BuyURL:           in.BuyURL,
		Description:      in.Description,
	}
	if in.Year != 0 {
		v.Year = strconv.Itoa(in.Year)
	}
	return v
}
