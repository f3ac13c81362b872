package web

import (
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/bookshelf/binder"
	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/modules/account"
	"github.com/dmitrymomot/bookshelf/pkg/clientip"
	"github.com/dmitrymomot/bookshelf/pkg/httpserver"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/ratelimiter"
	"github.com/dmitrymomot/bookshelf/pkg/requestid"
	"github.com/dmitrymomot/bookshelf/pkg/session"
)

const healthTimeout = 3 * time.Second

type Dependencies struct {
	Logger   *slog.Logger
	Catalog  *catalog.Service
	Flow     account.Flow
	Sessions *session.Manager
	Views    Views
	// HealthChecks are run by /healthz, keyed by dependency name.
	HealthChecks map[string]httpserver.Check
	// LoginLimiter caps login attempts per client IP. Nil disables it.
	LoginLimiter *ratelimiter.Bucket
	// TrustProxy takes the client IP from proxy headers.
	TrustProxy bool
	// Sentry reports panics to Sentry before they are recovered.
	Sentry bool
}

// NewRouter builds the whole web application:
//
//	GET        /                          home: genres and recent books
//	GET        /genre/{genre}[/]          books of a genre
//	GET, POST  /genre/{genre}/new-book    add a book (login required)
//	GET        /book/{book}               book page, 301 to the canonical slug
//	GET, POST  /book/{book}/edit          edit a book (creator only)
//	GET, POST  /book/{book}/delete        delete a book (creator only)
//	GET        /login[/{provider}[/callback]]
//	GET, POST  /logout[/{provider}]
//	GET        /api/genres, /api/genres/{genre}/books, /api/books/{book}
//	GET        /healthz
func NewRouter(d Dependencies) http.Handler {
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}

	errorHandler := handler.NewErrorHandler(log, handler.ErrorHandlerConfig{
		ErrorPage:   d.Views.ErrorPage,
		ErrorToast:  d.Views.ErrorToast,
		Classifiers: Classifiers(),
	})
	books := NewBookHandler(d.Catalog, d.Views, log)
	accounts := account.NewOAuthService(d.Flow, d.Sessions, &account.OAuthViews{LoginPage: d.Views.LoginPage}, errorHandler, log)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware(d.TrustProxy), requestLogger(log), middleware.Recoverer)
	if d.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.ErrMethodNotAllowed)
	})

	r.Get("/healthz", httpserver.HealthHandler(log, healthTimeout, d.HealthChecks))

	r.Route("/api", func(r chi.Router) {
		r.Get("/genres", wrap(books.apiGenres, errorHandler))
		r.Get("/genres/{genre}/books", wrap(books.apiGenreBooks, errorHandler))
		r.Get("/books/{book}", wrap(books.apiBook, errorHandler))
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)

		r.Get("/", wrap(books.home, errorHandler))
		r.Get("/genre/{genre}", wrap(books.genre, errorHandler))
		r.Get("/genre/{genre}/", wrap(books.genre, errorHandler))
		r.Get("/book/{book}", wrap(books.book, errorHandler))

		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(loginLimit(d.LoginLimiter, errorHandler))
			}
			account.Routes(account.RouterOptions{
				Login:  accounts.Login(),
				Logout: accounts.Logout(),
			})(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth(http.HandlerFunc(loginRedirect)))

			newBook := wrap(books.newBook, errorHandler)
			r.Get("/genre/{genre}/new-book", newBook)
			r.Post("/genre/{genre}/new-book", newBook)

			editBook := wrap(books.editBook, errorHandler)
			r.Get("/book/{book}/edit", editBook)
			r.Post("/book/{book}/edit", editBook)

			deleteBook := wrap(books.deleteBook, errorHandler)
			r.Get("/book/{book}/delete", deleteBook)
			r.Post("/book/{book}/delete", deleteBook)
		})
	})

	return r
}

// loginLimit keys the bucket by client IP and reports denials through the
// shared error handler.
func loginLimit(b *ratelimiter.Bucket, eh handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(b,
		func(r *http.Request) string {
			if ip := clientip.FromContext(r.Context()); ip != "" {
				return "login:" + ip
			}
			return ""
		},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			eh(handler.NewContext(w, r), handler.ErrTooManyRequests)
		}),
		func(w http.ResponseWriter, r *http.Request, err error) {
			eh(handler.NewContext(w, r), err)
		},
	)
}

// wrap binds path, query and form fields into R.
func wrap[R any](h handler.HandlerFunc[handler.Context, R], eh handler.ErrorHandler[handler.Context]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binder.Path(chi.URLParam), binder.Query(), binder.Form()),
		handler.WithErrorHandler[handler.Context, R](eh),
	)
}
