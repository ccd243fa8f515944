package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// RedisClient is the subset of redis.UniversalClient used by the cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// storeIfVersion writes the entry only while the user's version key still
// holds the value read before the underlying store was queried.
// KEYS: version, entry. ARGV: version, payload, ttl in milliseconds.
const storeIfVersion = `
if (redis.call('GET', KEYS[1]) or '') == ARGV[1] then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return 1
end
return 0
`

// DefaultSubscriptionCacheTTL bounds staleness if an invalidation is lost.
const DefaultSubscriptionCacheTTL = 5 * time.Minute

// CachedSubscriptionStore is a read-through Redis cache in front of another
// SubscriptionStore. Upserts go to the underlying store, bump a per-user
// version key and drop the cached entry. A read-through only populates the
// cache if the version is unchanged since the read began, so a read racing
// an upsert cannot cache the old subscription. Redis errors are logged and the
// underlying store is used instead.
type CachedSubscriptionStore struct {
	next   SubscriptionStore
	client RedisClient
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// CacheOption configures a CachedSubscriptionStore.
type CacheOption func(*CachedSubscriptionStore)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSubscriptionStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheKeyPrefix(prefix string) CacheOption {
	return func(c *CachedSubscriptionStore) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *CachedSubscriptionStore) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCachedSubscriptionStore(next SubscriptionStore, client RedisClient, opts ...CacheOption) *CachedSubscriptionStore {
	c := &CachedSubscriptionStore{
		next:   next,
		client: client,
		ttl:    DefaultSubscriptionCacheTTL,
		prefix: "subscription:",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedSubscriptionStore) key(userID string) string {
	return c.prefix + userID
}

func (c *CachedSubscriptionStore) versionKey(userID string) string {
	return "version:" + c.prefix + userID
}

func (c *CachedSubscriptionStore) Upsert(ctx context.Context, in SubscriptionInput, now time.Time) (*Subscription, error) {
	sub, err := c.next.Upsert(ctx, in, now)
	if err != nil {
		return nil, err
	}
	if err := c.client.Incr(ctx, c.versionKey(in.UserID)).Err(); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to bump subscription cache version",
			logger.UserID(in.UserID),
			logger.Error(err),
		)
	}
	if err := c.client.Del(ctx, c.key(in.UserID)).Err(); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to invalidate cached subscription",
			logger.UserID(in.UserID),
			logger.Error(err),
		)
	}
	return sub, nil
}

func (c *CachedSubscriptionStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	key := c.key(userID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var sub Subscription
		uerr := json.Unmarshal(data, &sub)
		if uerr == nil {
			return &sub, nil
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt cached subscription",
			logger.UserID(userID),
			logger.Error(uerr),
		)
	case !errors.Is(err, redis.Nil):
		c.logger.LogAttrs(ctx, slog.LevelWarn, "subscription cache read failed",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	// Without a version there is nothing to compare against; skip the write-back.
	version, verr := c.client.Get(ctx, c.versionKey(userID)).Result()
	cacheable := verr == nil || errors.Is(verr, redis.Nil)

	sub, err := c.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cacheable {
		return sub, nil
	}
	if data, err := json.Marshal(sub); err == nil {
		keys := []string{c.versionKey(userID), key}
		if err := c.client.Eval(ctx, storeIfVersion, keys, version, data, c.ttl.Milliseconds()).Err(); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "subscription cache write failed",
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}
	return sub, nil
}
