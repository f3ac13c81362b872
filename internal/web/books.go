package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

// bookFormTarget is the element DataStar patches with a re-rendered form.
const bookFormTarget = "#book-form"

type genreRequest struct {
	Genre string `path:"genre"`
}

type bookRequest struct {
	Book string `path:"book"`
}

// bookFormRequest serves both the form page (GET) and its submission (POST).
type bookFormRequest struct {
	PathGenre string `path:"genre"`
	Book      string `path:"book"`

	Title            string `form:"title"`
	Author           string `form:"author"`
	Year             string `form:"year"`
	Genre            string `form:"genre"`
	CoverURL         string `form:"cover_url"`
	CoverAttribution string `form:"cover_attribution"`
	BuyURL           string `form:"buy_url"`
	Description      string `form:"description"`
}

func (r bookFormRequest) values() BookFormValues {
	return BookFormValues{
		Title:            r.Title,
		Author:           r.Author,
		Year:             r.Year,
		Genre:            r.Genre,
		CoverURL:         r.CoverURL,
		CoverAttribution: r.CoverAttribution,
		BuyURL:           r.BuyURL,
		Description:      r.Description,
	}
}

// input converts the submitted fields. An empty year means unknown.
func (r bookFormRequest) input() (catalog.BookInput, handler.ValidationError) {
	in := catalog.BookInput{
		Title:            r.Title,
		Author:           r.Author,
		Genre:            r.Genre,
		CoverURL:         r.CoverURL,
		CoverAttribution: r.CoverAttribution,
		BuyURL:           r.BuyURL,
		Description:      r.Description,
	}
	if year := strings.TrimSpace(r.Year); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			errs := handler.NewValidationError()
			errs.Add("year", msgYearNotNumber)
			return in, errs
		}
		in.Year = n
	}
	return in, nil
}

// BookHandler serves the catalog pages and their JSON twins under /api.
type BookHandler struct {
	catalog *catalog.Service
	views   Views
	logger  *slog.Logger
}

func NewBookHandler(svc *catalog.Service, views Views, log *slog.Logger) *BookHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &BookHandler{catalog: svc, views: views, logger: log.With(logger.Component("books"))}
}

func actor(ctx handler.Context) *uuid.UUID {
	if sess := ctx.Session(); sess != nil {
		return sess.UserID
	}
	return nil
}

func (h *BookHandler) home(ctx handler.Context, _ struct{}) handler.Response {
	genres, err := h.catalog.Genres(ctx)
	if err != nil {
		return handler.Error(err)
	}
	recent, err := h.catalog.RecentBooks(ctx, 0)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(h.views.HomePage(HomePageParams{
		Page:   newPage(ctx, "Bookshelf"),
		Genres: genres,
		Recent: recent,
	}))
}

func (h *BookHandler) genre(ctx handler.Context, req genreRequest) handler.Response {
	g, books, err := h.catalog.GenreBooks(ctx, req.Genre)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(h.views.GenrePage(GenrePageParams{
		Page:  newPage(ctx, g.Name),
		Genre: g,
		Books: books,
	}))
}

// book renders a book page. Stale or bare-id slugs are sent to the
// canonical URL with 301.
func (h *BookHandler) book(ctx handler.Context, req bookRequest) handler.Response {
	b, err := h.catalog.BookBySlug(ctx, req.Book)
	if err != nil {
		return handler.Error(err)
	}
	if req.Book != b.Slug() {
		return handler.RedirectWithCode(b.URL(), http.StatusMovedPermanently)
	}
	return handler.Templ(h.views.BookPage(BookPageParams{
		Page:    newPage(ctx, b.Title),
		Book:    b,
		CanEdit: catalog.CanEdit(actor(ctx), b),
	}))
}

func (h *BookHandler) newBook(ctx handler.Context, req bookFormRequest) handler.Response {
	g, err := h.catalog.Genre(ctx, req.PathGenre)
	if err != nil {
		return handler.Error(err)
	}
	params := BookFormParams{
		Page:   newPage(ctx, "New book"),
		Action: g.URL() + "new-book",
	}

	if ctx.Request().Method != http.MethodPost {
		params.Values = BookFormValues{Genre: g.Name}
		return h.renderForm(ctx, params, http.StatusOK)
	}

	params.Values = req.values()
	if params.Values.Genre == "" {
		params.Values.Genre = g.Name
	}
	in, errs := req.input()
	if in.Genre == "" {
		in.Genre = g.Name
	}
	if errs != nil {
		params.Errors = errs
		return h.renderForm(ctx, params, http.StatusUnprocessableEntity)
	}

	b, err := h.catalog.CreateBook(ctx, actor(ctx), in)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			params.Errors = errs
			return h.renderForm(ctx, params, http.StatusUnprocessableEntity)
		}
		return handler.Error(err)
	}
	return handler.Redirect(b.URL())
}

func (h *BookHandler) editBook(ctx handler.Context, req bookFormRequest) handler.Response {
	b, err := h.catalog.EditableBook(ctx, actor(ctx), req.Book)
	if err != nil {
		return handler.Error(err)
	}
	params := BookFormParams{
		Page:   newPage(ctx, "Edit "+b.Title),
		Action: b.URL() + "/edit",
		Book:   &b,
	}

	if ctx.Request().Method != http.MethodPost {
		params.Values = formValues(catalog.InputFromBook(b))
		return h.renderForm(ctx, params, http.StatusOK)
	}

	params.Values = req.values()
	in, errs := req.input()
	if errs != nil {
		params.Errors = errs
		return h.renderForm(ctx, params, http.StatusUnprocessableEntity)
	}

	updated, err := h.catalog.UpdateBook(ctx, actor(ctx), req.Book, in)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			params.Errors = errs
			return h.renderForm(ctx, params, http.StatusUnprocessableEntity)
		}
		return handler.Error(err)
	}
	return handler.Redirect(updated.URL())
}

func (h *BookHandler) deleteBook(ctx handler.Context, req bookRequest) handler.Response {
	if ctx.Request().Method != http.MethodPost {
		b, err := h.catalog.EditableBook(ctx, actor(ctx), req.Book)
		if err != nil {
			return handler.Error(err)
		}
		return handler.Templ(h.views.DeleteBookPage(DeleteBookParams{
			Page: newPage(ctx, "Delete "+b.Title),
			Book: b,
		}))
	}

	b, err := h.catalog.DeleteBook(ctx, actor(ctx), req.Book)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Redirect(b.GenreURL())
}

func (h *BookHandler) renderForm(ctx handler.Context, params BookFormParams, status int) handler.Response {
	genres, err := h.catalog.Genres(ctx)
	if err != nil {
		return handler.Error(err)
	}
	params.Genres = genres
	return handler.TemplPartialWithStatus(
		h.views.BookForm(params),
		h.views.BookFormPage(params),
		status,
		handler.WithTarget(bookFormTarget),
	)
}
