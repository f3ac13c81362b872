package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is a feature that serves its own sub-tree.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services the account module mounts.
// Each service is optional.
type RouterOptions struct {
	// Login serves /login, /login/{provider} and the provider callbacks.
	Login Mountable
	// Logout serves /logout and /logout/{provider}.
	Logout Mountable
}

// Routes registers the account module on r.
//
//	flow := oauth.NewFlow(registry, users)
//	svc := account.NewOAuthService(flow, sessions, views, errorHandler)
//
//	r := chi.NewRouter()
//	r.Group(account.Routes(account.RouterOptions{
//		Login:  svc.Login(),
//		Logout: svc.Logout(),
//	}))
func Routes(opts RouterOptions) func(chi.Router) {
	return func(r chi.Router) {
		if opts.Login != nil {
			r.Mount("/login", opts.Login.Handle())
		}
		if opts.Logout != nil {
			r.Mount("/logout", opts.Logout.Handle())
		}
	}
}

type mountFunc func() http.Handler

func (f mountFunc) Handle() http.Handler { return f() }
