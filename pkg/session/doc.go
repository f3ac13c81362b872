// Package session keeps per-browser state on the server.
//
// A Session is an opaque token plus a small key/value bag and an optional
// authenticated user id. The token travels in an encrypted cookie (see
// package cookie); the session body lives in a Store. Two stores ship with
// the package: MemoryStore for a single process and RedisStore for anything
// that runs more than one replica.
//
// Typical wiring:
//
//	mgr := session.New(
//		session.WithCookieManager(cookies),
//		session.WithStore(session.NewRedisStore(rdb)),
//	)
//	r.Use(mgr.Middleware)
//
// Handlers read the session with FromContext, mutate it with Set/Delete and
// the middleware persists modified sessions once the handler returns. Token
// rotation on login and logout is done with Authenticate and Deauthenticate.
package session
