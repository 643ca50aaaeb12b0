package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

const cacheKeyPrefix = "explorer:masters:"

// RedisCache caches explorer results in Redis with a TTL. All storage
// failures degrade to cache misses; the explorer then goes to the
// network as usual.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache wraps an existing Redis client. A zero ttl stores
// entries without expiry.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached result for key, if present and decodable.
func (c *RedisCache) Get(ctx context.Context, key string) (*Result, bool) {
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("explorer cache read failed", "err", err)
		}
		return nil, false
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		c.logger.Warn("explorer cache entry corrupt", "key", key, "err", err)
		return nil, false
	}
	return &r, true
}

// Set stores r under key.
func (c *RedisCache) Set(ctx context.Context, key string, r *Result) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("explorer cache write failed", "err", err)
	}
}
