package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// entry is one encoded value and its deadline. A zero expiresAt never expires.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (e *entry) isExpired() bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.expiresAt)
}

// MemoryCache keeps encoded entries (see GetJSON and SetJSON) in process
// memory. Keys carry their namespace prefix ("apps:", "details:", "pages:"),
// so DeletePrefix can drop one namespace. The least recently used entry is
// evicted once maxSize is reached, and a background loop drops expired ones.
type MemoryCache struct {
	mu              sync.RWMutex
	cache           map[string]*list.Element
	lru             *list.List
	maxSize         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	hits            atomic.Int64
	misses          atomic.Int64
}

// MemoryCacheOption is a functional option for MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithMaxSize bounds the number of entries across all namespaces.
func WithMaxSize(size int) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.maxSize = size
	}
}

// WithDefaultTTL sets the TTL used when Set is called with a zero TTL.
func WithDefaultTTL(ttl time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.defaultTTL = ttl
	}
}

// WithCleanupInterval sets how often expired entries are dropped.
func WithCleanupInterval(interval time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.cleanupInterval = interval
	}
}

// NewMemoryCache creates a memory cache and starts its cleanup loop.
// Close stops the loop.
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		cache:           make(map[string]*list.Element),
		lru:             list.New(),
		maxSize:         10000,
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupLoop()

	return c
}

func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry)
		if e.isExpired() {
			c.lru.Remove(elem)
			delete(c.cache, e.key)
		}
		elem = next
	}
}

func (c *MemoryCache) evictIfNeeded() {
	for c.lru.Len() >= c.maxSize {
		oldest := c.lru.Front()
		if oldest != nil {
			e := oldest.Value.(*entry)
			c.lru.Remove(oldest)
			delete(c.cache, e.key)
		}
	}
}

// Get returns the encoded value stored under key, or nil on a miss.
// An expired entry counts as a miss and is removed.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		c.misses.Add(1)
		return nil, nil
	}

	e := elem.Value.(*entry)
	if e.isExpired() {
		c.lru.Remove(elem)
		delete(c.cache, key)
		c.misses.Add(1)
		return nil, nil
	}

	c.lru.MoveToBack(elem)
	c.hits.Add(1)
	return e.value, nil
}

// Set stores an encoded value. A zero ttl uses the default TTL and a
// negative ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToBack(elem)
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return nil
	}

	c.evictIfNeeded()

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	elem := c.lru.PushBack(e)
	c.cache[key] = elem

	return nil
}

// Delete removes key and reports whether it was present.
func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return false, nil
	}

	c.lru.Remove(elem)
	delete(c.cache, key)
	return true, nil
}

// DeletePrefix removes every entry whose key starts with prefix, e.g. all
// cached pages, and returns how many were removed.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, elem := range c.cache {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(elem)
			delete(c.cache, key)
			count++
		}
	}
	return count, nil
}

// Exists reports whether key holds an unexpired entry. Unlike Get it does
// not touch recency or the hit counters.
func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, ok := c.cache[key]
	if !ok {
		return false, nil
	}

	e := elem.Value.(*entry)
	if e.isExpired() {
		return false, nil
	}

	return true, nil
}

// Clear removes the entries of every namespace.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*list.Element)
	c.lru.Init()
	return nil
}

// Close stops the cleanup loop and drops all entries. It is safe to call
// more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
	return c.Clear(context.Background())
}

// Size returns the number of entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// Stats reports size, capacity, expired entries and hit/miss counters for
// the cache stats endpoint.
func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expiredCount := 0
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry)
		if e.isExpired() {
			expiredCount++
		}
	}

	return Stats{
		Size:         c.lru.Len(),
		MaxSize:      c.maxSize,
		ExpiredCount: expiredCount,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
	}, nil
}
