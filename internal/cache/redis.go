package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache provides Redis-backed caching. A nil client degrades every
// operation to a no-op so callers never have to special-case a missing
// Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new cache backed by the given Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "sous:",
	}
}

// Get retrieves a cached value by key. Misses and Redis failures both
// return (nil, nil); the cache is best effort.
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Warn("Redis cache get failed", "error", err)
		return nil, nil
	}

	return data, nil
}

// Set stores a value in the cache with the given TTL. Values that are not
// already bytes are JSON encoded.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		data = encoded
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		slog.Warn("Redis cache set failed", "error", err)
	}

	return nil
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		slog.Warn("Redis cache delete failed", "error", err)
	}

	return nil
}
