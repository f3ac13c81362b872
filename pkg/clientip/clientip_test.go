package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/bookshelf/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:5123", nil, false, "203.0.113.7"},
		{"remote addr without port", "203.0.113.7", nil, false, "203.0.113.7"},
		{"ipv6 remote addr", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
		{"headers ignored without trust", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.2"}, false, "10.0.0.1"},
		{"cloudflare wins", "10.0.0.1:1", map[string]string{"CF-Connecting-IP": "198.51.100.9", "X-Forwarded-For": "198.51.100.2"}, true, "198.51.100.9"},
		{"first valid forwarded entry", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.2, 198.51.100.3"}, true, "198.51.100.2"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": " 198.51.100.4 "}, true, "198.51.100.4"},
		{"invalid headers fall back", "10.0.0.1:1", map[string]string{"X-Real-IP": "nope"}, true, "10.0.0.1"},
		{"nothing valid", "bogus", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.FromRequest(r, tt.trustProxy))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := clientip.Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.2")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "198.51.100.2", seen)
}

func TestLogExtractor(t *testing.T) {
	t.Parallel()

	_, ok := clientip.LogExtractor(context.Background())
	assert.False(t, ok)

	attr, ok := clientip.LogExtractor(clientip.WithContext(context.Background(), "192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
