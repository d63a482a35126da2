// Package cache provides cache backends for app lists, detail records and
// catalog pages. Values are opaque byte slices; see GetJSON and SetJSON for
// typed access.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is the interface for cache backends. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil if the key is not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache.
	// If ttl is 0, the default TTL is used. A negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes every key starting with prefix and returns how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close closes any connections and cleans up resources.
	Close() error
}

// StatsProvider provides cache statistics.
type StatsProvider interface {
	// Stats returns cache statistics.
	Stats(ctx context.Context) (Stats, error)
}

// Stats contains cache statistics.
type Stats struct {
	// Size is the current number of entries
	Size int `json:"size"`
	// MaxSize is the maximum number of entries (for memory cache)
	MaxSize int `json:"max_size,omitempty"`
	// ExpiredCount is the number of expired entries
	ExpiredCount int `json:"expired_count,omitempty"`
	// Hits is the number of cache hits
	Hits int64 `json:"hits,omitempty"`
	// Misses is the number of cache misses
	Misses int64 `json:"misses,omitempty"`
}

// NullCache is a cache that doesn't cache anything.
// Useful for testing or disabling caching.
type NullCache struct{}

// NewNullCache creates a new NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always returns nil.
func (c *NullCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

// Set does nothing.
func (c *NullCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Delete always returns false.
func (c *NullCache) Delete(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// DeletePrefix always returns 0.
func (c *NullCache) DeletePrefix(_ context.Context, _ string) (int, error) {
	return 0, nil
}

// Exists always returns false.
func (c *NullCache) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// Clear does nothing.
func (c *NullCache) Clear(_ context.Context) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// PrefixedCache scopes a shared cache to a key namespace. The client uses
// one per kind of entry ("apps", "details", "pages") so that a whole kind
// can be invalidated at once.
type PrefixedCache struct {
	cache  Cache
	prefix string
}

// NewPrefixedCache creates a new cache that prefixes all keys.
func NewPrefixedCache(cache Cache, prefix string) *PrefixedCache {
	return &PrefixedCache{
		cache:  cache,
		prefix: strings.TrimSuffix(prefix, ":") + ":",
	}
}

// Prefix returns the namespace including the trailing separator.
func (c *PrefixedCache) Prefix() string {
	return c.prefix
}

func (c *PrefixedCache) prefixKey(key string) string {
	return c.prefix + key
}

// Get retrieves a value with the prefixed key.
func (c *PrefixedCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.cache.Get(ctx, c.prefixKey(key))
}

// Set stores a value with the prefixed key.
func (c *PrefixedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.cache.Set(ctx, c.prefixKey(key), value, ttl)
}

// Delete removes a value with the prefixed key.
func (c *PrefixedCache) Delete(ctx context.Context, key string) (bool, error) {
	return c.cache.Delete(ctx, c.prefixKey(key))
}

// DeletePrefix removes prefixed keys starting with prefix.
func (c *PrefixedCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return c.cache.DeletePrefix(ctx, c.prefixKey(prefix))
}

// Exists checks if a prefixed key exists.
func (c *PrefixedCache) Exists(ctx context.Context, key string) (bool, error) {
	return c.cache.Exists(ctx, c.prefixKey(key))
}

// Clear removes only the entries of this namespace.
func (c *PrefixedCache) Clear(ctx context.Context) error {
	_, err := c.cache.DeletePrefix(ctx, c.prefix)
	return err
}

// Close is a no-op; the underlying cache is owned by whoever created it.
func (c *PrefixedCache) Close() error {
	return nil
}
