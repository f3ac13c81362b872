package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/bookshelf/binder"
	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/session"
)

// keyNext remembers where to go after a successful login.
const keyNext = "login.next"

// Flow is the part of oauth.Flow the handlers drive.
type Flow interface {
	Providers() []string
	BeginLogin(ctx context.Context, sess oauth.Session, provider string) (string, error)
	HandleCallback(ctx context.Context, sess oauth.Session, provider, state, code string) (oauth.Identity, error)
	EndLogin(ctx context.Context, sess oauth.Session, provider string) error
}

var _ Flow = (*oauth.Flow)(nil)

type OAuthService struct {
	flow         Flow
	sessionMgr   *session.Manager
	views        *OAuthViews
	errorHandler handler.ErrorHandler[handler.Context]
	logger       *slog.Logger
}

type OAuthViews struct {
	LoginPage func(LoginPageParams) templ.Component
}

// LoginPageParams contains data for rendering the provider choice.
type LoginPageParams struct {
	User      *oauth.Identity
	Providers []string
	Next      string
}

func NewOAuthService(
	flow Flow,
	sessionMgr *session.Manager,
	views *OAuthViews,
	errorHandler handler.ErrorHandler[handler.Context],
	log *slog.Logger,
) *OAuthService {
	if log == nil {
		log = logger.Discard()
	}
	return &OAuthService{
		flow:         flow,
		sessionMgr:   sessionMgr,
		views:        views,
		errorHandler: errorHandler,
		logger:       log.With(logger.Component("account")),
	}
}

// Login mounts the login routes.
func (s *OAuthService) Login() Mountable {
	return mountFunc(func() http.Handler {
		r := chi.NewRouter()

		r.Get("/", handler.Wrap(s.loginPage,
			handler.WithBinders[handler.Context, LoginRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, LoginRequest](s.errorHandler),
		))
		r.Get("/{provider}", handler.Wrap(s.beginLogin,
			handler.WithBinders[handler.Context, LoginRequest](binder.Path(chi.URLParam), binder.Query()),
			handler.WithErrorHandler[handler.Context, LoginRequest](s.errorHandler),
		))
		r.Get("/{provider}/callback", handler.Wrap(s.callback,
			handler.WithBinders[handler.Context, CallbackRequest](binder.Path(chi.URLParam), binder.Query()),
			handler.WithErrorHandler[handler.Context, CallbackRequest](s.errorHandler),
		))

		return r
	})
}

// Logout mounts the logout routes. GET is accepted next to POST because the
// page header links to it.
func (s *OAuthService) Logout() Mountable {
	return mountFunc(func() http.Handler {
		r := chi.NewRouter()

		logout := handler.Wrap(s.logout,
			handler.WithBinders[handler.Context, LogoutRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, LogoutRequest](s.errorHandler),
		)
		r.Get("/", logout)
		r.Post("/", logout)
		r.Get("/{provider}", logout)
		r.Post("/{provider}", logout)

		return r
	})
}

// LoginRequest starts a login, optionally returning to Next afterwards.
type LoginRequest struct {
	Provider string `path:"provider"`
	Next     string `query:"next"`
}

func (s *OAuthService) loginPage(ctx handler.Context, req LoginRequest) handler.Response {
	var user *oauth.Identity
	if id, ok := ctx.Identity(); ok {
		user = &id
	}
	return handler.Templ(s.views.LoginPage(LoginPageParams{
		User:      user,
		Providers: s.flow.Providers(),
		Next:      safeNext(req.Next),
	}))
}

func (s *OAuthService) beginLogin(ctx handler.Context, req LoginRequest) handler.Response {
	sess := ctx.Session()
	if sess == nil {
		return handler.Error(errors.New("account: session middleware is not installed"))
	}

	authURL, err := s.flow.BeginLogin(ctx, sess, req.Provider)
	if err != nil {
		return handler.Error(err)
	}
	if next := safeNext(req.Next); next != "/" {
		sess.Set(keyNext, next)
	}
	// The pending state must be stored before the browser reaches the provider.
	if err := s.sessionMgr.Save(ctx, sess); err != nil {
		return handler.Error(err)
	}
	return handler.RedirectWithCode(authURL, http.StatusFound)
}

// CallbackRequest is what the provider appends to the redirect URI.
type CallbackRequest struct {
	Provider string `path:"provider"`
	State    string `query:"state"`
	Code     string `query:"code"`
	Error    string `query:"error"`
}

func (s *OAuthService) callback(ctx handler.Context, req CallbackRequest) handler.Response {
	sess := ctx.Session()
	if sess == nil {
		return handler.Error(errors.New("account: session middleware is not installed"))
	}
	if req.Error != "" {
		s.logger.WarnContext(ctx, "provider denied authorization",
			logger.Provider(req.Provider),
			slog.String("reason", req.Error),
		)
	}

	identity, err := s.flow.HandleCallback(ctx, sess, req.Provider, req.State, req.Code)
	if err != nil {
		return handler.Error(err)
	}

	next, _ := sess.GetString(keyNext)
	sess.Delete(keyNext)
	if err := s.sessionMgr.Authenticate(ctx, ctx.ResponseWriter(), sess, identity.UserID); err != nil {
		return handler.Error(err)
	}
	return handler.Redirect(safeNext(next))
}

// LogoutRequest names the provider to log out from. Empty means the one the
// current identity came from.
type LogoutRequest struct {
	Provider string `path:"provider"`
}

func (s *OAuthService) logout(ctx handler.Context, req LogoutRequest) handler.Response {
	sess := ctx.Session()
	if sess == nil {
		return handler.Error(oauth.ErrNotAuthenticated)
	}

	provider := req.Provider
	if provider == "" {
		identity, ok := ctx.Identity()
		if !ok {
			return handler.Error(oauth.ErrNotAuthenticated)
		}
		provider = identity.Provider
	}

	if err := s.flow.EndLogin(ctx, sess, provider); err != nil {
		return handler.Error(err)
	}
	if err := s.sessionMgr.Deauthenticate(ctx, ctx.ResponseWriter(), sess); err != nil {
		return handler.Error(err)
	}

	s.logger.InfoContext(ctx, "user logged out", logger.Provider(provider))
	return handler.Redirect("/")
}

// safeNext only lets local absolute paths through.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
