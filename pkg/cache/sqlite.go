package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists entries in a single SQLite table so that app lists
// and detail records survive restarts.
type SQLiteCache struct {
	db              *sql.DB
	path            string
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	stopCleanup     chan struct{}
	cleanupDone     chan struct{}
	closeOnce       sync.Once
	hits            atomic.Int64
	misses          atomic.Int64
}

// SQLiteCacheOption is a functional option for SQLiteCache.
type SQLiteCacheOption func(*SQLiteCache)

// WithSQLiteDefaultTTL sets the default TTL for entries.
func WithSQLiteDefaultTTL(ttl time.Duration) SQLiteCacheOption {
	return func(c *SQLiteCache) {
		c.defaultTTL = ttl
	}
}

// WithSQLiteCleanupInterval sets how often expired rows are purged. Zero or
// a negative interval leaves expired rows to lazy removal on read.
func WithSQLiteCleanupInterval(interval time.Duration) SQLiteCacheOption {
	return func(c *SQLiteCache) {
		c.cleanupInterval = interval
	}
}

// NewSQLiteCache opens or creates the cache database at path.
func NewSQLiteCache(path string, opts ...SQLiteCacheOption) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under fan-out.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	c := &SQLiteCache{
		db:              db,
		path:            path,
		defaultTTL:      time.Hour,
		cleanupInterval: 10 * time.Minute,
		now:             time.Now,
		stopCleanup:     make(chan struct{}),
		cleanupDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if c.cleanupInterval > 0 {
		go c.cleanupLoop()
	} else {
		close(c.cleanupDone)
	}
	return c, nil
}

func (c *SQLiteCache) cleanupLoop() {
	defer close(c.cleanupDone)
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.Purge(context.Background())
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *SQLiteCache) migrate() error {
	if _, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("failed to create cache_entries table: %w", err)
	}
	if _, err := c.db.Exec(`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at)`); err != nil {
		return fmt.Errorf("failed to create expiry index: %w", err)
	}
	return nil
}

// Path returns the database path.
func (c *SQLiteCache) Path() string {
	return c.path
}

func (c *SQLiteCache) expired(expiresAt int64) bool {
	return expiresAt != 0 && c.now().UnixNano() > expiresAt
}

// Get retrieves a value. Expired rows are removed lazily.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if c.expired(expiresAt) {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
			return nil, err
		}
		c.misses.Add(1)
		return nil, nil
	}

	c.hits.Add(1)
	return value, nil
}

// Set stores a value, replacing any existing entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	if value == nil {
		value = []byte{}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	return err
}

// Delete removes a value.
func (c *SQLiteCache) Delete(ctx context.Context, key string) (bool, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *SQLiteCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE substr(key, 1, length(?)) = ?", prefix, prefix)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Exists checks if an unexpired entry exists.
func (c *SQLiteCache) Exists(ctx context.Context, key string) (bool, error) {
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !c.expired(expiresAt), nil
}

// Clear removes all entries.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries")
	return err
}

// Purge removes expired entries and returns how many were removed.
func (c *SQLiteCache) Purge(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at < ?", c.now().UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close stops the cleanup goroutine and closes the database.
func (c *SQLiteCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
		<-c.cleanupDone
		err = c.db.Close()
	})
	return err
}

// Stats returns entry counts and hit/miss counters.
func (c *SQLiteCache) Stats(ctx context.Context) (Stats, error) {
	var size, expired int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at != 0 AND expires_at < ? THEN 1 ELSE 0 END), 0)
		FROM cache_entries
	`, c.now().UnixNano()).Scan(&size, &expired)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Size:         size,
		ExpiredCount: expired,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
	}, nil
}
