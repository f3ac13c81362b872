package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// TemplOption configures how a component is patched into the page for
// DataStar requests.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector the component is patched into.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

type templResponse struct {
	full    templ.Component
	partial templ.Component
	status  int
	options []TemplOption
}

// Render patches the partial over SSE for DataStar requests and writes the
// full page otherwise.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		return sse.PatchElementTempl(t.partial, t.options...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if t.status != 0 && t.status != http.StatusOK {
		w.WriteHeader(t.status)
	}
	return t.full.Render(r.Context(), w)
}

// Templ renders component as the whole response.
func Templ(component templ.Component, opts ...TemplOption) Response {
	return templResponse{full: component, partial: component, options: opts}
}

// TemplWithStatus renders component with a non-200 status, as for error pages
// and re-displayed invalid forms.
func TemplWithStatus(component templ.Component, status int) Response {
	return templResponse{full: component, partial: component, status: status}
}

// TemplPartialWithStatus renders full with status for regular requests and
// only partial for DataStar requests.
func TemplPartialWithStatus(partial, full templ.Component, status int, opts ...TemplOption) Response {
	return templResponse{full: full, partial: partial, status: status, options: opts}
}
