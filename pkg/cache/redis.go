package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores entries in Redis under a key namespace. Clear only
// removes keys of that namespace.
type RedisCache struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
	scanCount  int64
	hits       atomic.Int64
	misses     atomic.Int64
}

// RedisCacheOption is a functional option for RedisCache.
type RedisCacheOption func(*RedisCache)

// WithRedisNamespace sets the key namespace (default "game-catalog:").
func WithRedisNamespace(namespace string) RedisCacheOption {
	return func(c *RedisCache) {
		c.namespace = namespace
	}
}

// WithRedisDefaultTTL sets the default TTL for entries.
func WithRedisDefaultTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		c.defaultTTL = ttl
	}
}

// NewRedisCache connects to the Redis server at url, e.g.
// "redis://localhost:6379/0", and verifies the connection.
func NewRedisCache(ctx context.Context, url string, opts ...RedisCacheOption) (*RedisCache, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	c := &RedisCache{
		client:     redis.NewClient(options),
		namespace:  "game-catalog:",
		defaultTTL: time.Hour,
		scanCount:  500,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return c, nil
}

func (c *RedisCache) key(key string) string {
	return c.namespace + key
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.hits.Add(1)
	return data, nil
}

// Set stores a value in Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePrefix scans for keys starting with prefix and deletes them in
// batches.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	match := escapeGlob(c.key(prefix)) + "*"

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, c.scanCount).Result()
		if err != nil {
			return total, err
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return total, err
			}
			total += int(n)
		}
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// Exists checks if a key exists in Redis.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes all keys of the namespace.
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.DeletePrefix(ctx, "")
	return err
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Stats returns hit and miss counts and the size of the namespace.
func (c *RedisCache) Stats(ctx context.Context) (Stats, error) {
	size := 0
	var cursor uint64
	match := escapeGlob(c.namespace) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, c.scanCount).Result()
		if err != nil {
			return Stats{}, err
		}
		size += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	return Stats{
		Size:   size,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the pattern characters understood by SCAN MATCH.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
