package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return datastar.NewSSE(w, r).Redirect(rr.url)
	}
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect answers with 303 See Other, or a client-side redirect for DataStar.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// RedirectWithCode redirects with code, e.g. 302 for OAuth authorization URLs
// or 301 for canonical book URLs.
func RedirectWithCode(url string, code int) Response {
	return redirectResponse{url: url, code: code}
}
