package oauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dmitrymomot/bookshelf/pkg/oauth"
)

const testToken = "tok-123"

// fakeServer plays a provider's token, user-info and revoke endpoints.
type fakeServer struct {
	tokenStatus    int
	tokenBody      string
	userInfo       map[string]any
	userInfoStatus int
	revokeStatus   int

	mu  sync.Mutex
	got captured
	srv *httptest.Server
}

// captured is what the fake endpoints saw.
type captured struct {
	tokenCalls    int
	tokenForm     url.Values
	tokenUser     string
	tokenPass     string
	userInfoCalls int
	userInfoAuth  string
	userAgent     string
	revokeCalls   int
	revokeMethod  string
	revokeQuery   url.Values
	revokeForm    url.Values
	revokeBasicID string
}

func newFakeServer(t *testing.T, configure func(*fakeServer)) *fakeServer {
	t.Helper()

	f := &fakeServer{
		tokenStatus:    http.StatusOK,
		tokenBody:      `{"access_token":"` + testToken + `","token_type":"bearer","expires_in":3600}`,
		userInfo:       map[string]any{"id": "42", "name": "Ada", "email": "ada@example.com"},
		userInfoStatus: http.StatusOK,
		revokeStatus:   http.StatusOK,
	}
	if configure != nil {
		configure(f)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		user, pass, _ := r.BasicAuth()

		f.mu.Lock()
		f.got.tokenCalls++
		f.got.tokenForm = r.PostForm
		f.got.tokenUser, f.got.tokenPass = user, pass
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.got.userInfoCalls++
		f.got.userInfoAuth = r.Header.Get("Authorization")
		f.got.userAgent = r.Header.Get("User-Agent")
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.userInfoStatus)
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		id, _, _ := r.BasicAuth()

		f.mu.Lock()
		f.got.revokeCalls++
		f.got.revokeMethod = r.Method
		f.got.revokeQuery = r.URL.Query()
		f.got.revokeForm = r.PostForm
		f.got.revokeBasicID = id
		f.mu.Unlock()

		w.WriteHeader(f.revokeStatus)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) provider(name string, revoke oauth.RevokeMethod) oauth.Provider {
	p := oauth.Provider{
		Name:          name,
		AuthURL:       f.srv.URL + "/authorize",
		TokenURL:      f.srv.URL + "/token",
		UserInfoURL:   f.srv.URL + "/userinfo",
		RevokeMethod:  revoke,
		ClientID:      "client-" + name,
		ClientSecret:  "secret-" + name,
		Scope:         "openid profile email",
		RedirectURL:   "http://localhost:65010/login/" + name + "/callback",
		UsernameField: "name",
		EmailField:    "email",
	}
	if revoke != oauth.RevokeNone {
		p.RevokeURL = f.srv.URL + "/revoke"
	}
	return p
}

func (f *fakeServer) snapshot() captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}
