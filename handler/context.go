package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/session"
)

// Context is what typed handlers receive: the request context plus access to
// the request, the writer and the browser session.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Session returns the session put in the request context by
	// session.Manager.Middleware, or nil outside of it.
	Session() *session.Session
	// Identity returns the logged-in identity stored by the OAuth flow.
	Identity() (oauth.Identity, bool)
}

// NewContext creates the default Context for a request.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	sess, _ := session.FromContext(r.Context())
	return &httpContext{w: w, r: r, sess: sess}
}

type httpContext struct {
	w    http.ResponseWriter
	r    *http.Request
	sess *session.Session
}

func (c *httpContext) Request() *http.Request              { return c.r }
func (c *httpContext) ResponseWriter() http.ResponseWriter { return c.w }
func (c *httpContext) Session() *session.Session           { return c.sess }

func (c *httpContext) Identity() (oauth.Identity, bool) {
	if c.sess == nil || !c.sess.IsAuthenticated() {
		return oauth.Identity{}, false
	}
	return oauth.CurrentIdentity(c.sess)
}

func (c *httpContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *httpContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *httpContext) Err() error                  { return c.r.Context().Err() }
func (c *httpContext) Value(key any) any           { return c.r.Context().Value(key) }
