// Package clientip resolves the address of the client behind a request.
//
// RemoteAddr is used unless proxies are trusted, in which case
// CF-Connecting-IP, X-Forwarded-For and X-Real-IP are tried first.
// Middleware stores the result in the request context for log records and
// rate limit keys:
//
//	r.Use(clientip.Middleware(cfg.TrustProxy))
//	ip := clientip.FromContext(r.Context())
package clientip
