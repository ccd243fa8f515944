// Package redis connects to Redis using github.com/redis/go-redis/v9.
//
// The service uses Redis only as an optional read cache for subscriptions, so
// Config.Enabled reports false when REDIS_URL is unset and callers skip the
// connection entirely.
package redis
