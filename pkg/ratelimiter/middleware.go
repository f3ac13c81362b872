package ratelimiter

import (
	"math"
	"net/http"
	"strconv"
)

// KeyFunc names the bucket a request draws from. An empty key is not limited.
type KeyFunc func(r *http.Request) string

// Middleware answers denied requests with onLimited and store failures with
// onError. Both get the X-RateLimit-* headers already set on denial.
func Middleware(b *Bucket, key KeyFunc, onLimited http.Handler, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), k)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				// Whole seconds, rounded up.
				secs := max(int(math.Ceil(res.RetryAfter().Seconds())), 1)
				h.Set("Retry-After", strconv.Itoa(secs))
				onLimited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
