// Package ratelimiter is a token bucket limiter with in-memory and Redis
// state.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request takes one token; an empty bucket denies the
// request without consuming anything.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.Use(ratelimiter.Middleware(bucket, keyFunc, tooManyRequests))
package ratelimiter
