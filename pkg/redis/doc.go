// Package redis connects to a redis server with retries and exposes a
// healthcheck for the /healthz endpoint.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	checks["redis"] = redis.Healthcheck(client)
//
// The returned *redis.Client backs the session.RedisStore.
package redis
