package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Config controls whether proxy headers are believed.
type Config struct {
	// TrustProxy reads the client address from proxy headers. Enable it only
	// behind a proxy that overwrites them.
	TrustProxy bool `env:"HTTP_TRUST_PROXY" envDefault:"false"`
}

// proxyHeaders are consulted in order when proxies are trusted.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the normalized client IP, or "" if none is valid.
// X-Forwarded-For contributes its first valid entry.
func FromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			value := r.Header.Get(h)
			if value == "" {
				continue
			}
			for candidate := range strings.SplitSeq(value, ",") {
				if ip := parseIP(candidate); ip != "" {
					return ip
				}
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
