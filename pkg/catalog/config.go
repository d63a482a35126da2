package catalog

import "time"

// SourceConfig contains configuration for the catalog data source.
type SourceConfig struct {
	// Name is the registered source name ("steam", "mock")
	Name string `json:"name" yaml:"name"`
	// BaseURL overrides the source endpoint, e.g. a local proxy
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Timeout is the request timeout in seconds
	Timeout int `json:"timeout" yaml:"timeout"`
	// RateLimit is the maximum requests per second (0 = unlimited)
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	// Credentials contains source-specific credentials
	Credentials map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	// Options contains additional source-specific options
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// GetCredential returns a credential value by key.
func (c *SourceConfig) GetCredential(key string) string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials[key]
}

// GetOption returns a string option by key.
func (c *SourceConfig) GetOption(key string) string {
	if c.Options == nil {
		return ""
	}
	if v, ok := c.Options[key].(string); ok {
		return v
	}
	return ""
}

// TimeoutDuration returns the request timeout, defaulting to 30 seconds.
func (c *SourceConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// DefaultSourceConfig returns a default source configuration.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Name:    "steam",
		Timeout: 30,
	}
}

// CacheConfig contains configuration for the cache backend.
type CacheConfig struct {
	// Backend is the cache backend type ("memory", "redis", "sqlite", "none")
	Backend string `json:"backend" yaml:"backend"`
	// TTL is the default time-to-live in seconds for detail and page entries
	TTL int `json:"ttl" yaml:"ttl"`
	// AppListTTL is the time-to-live in seconds of the app list
	AppListTTL int `json:"app_list_ttl" yaml:"app_list_ttl"`
	// MaxSize is the maximum number of entries for memory cache
	MaxSize int `json:"max_size" yaml:"max_size"`
	// ConnectionString is the connection string for redis/sqlite backends
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`
}

// DefaultCacheConfig returns a default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend:    "memory",
		TTL:        600,
		AppListTTL: 86400,
		MaxSize:    10000,
	}
}

// Config is the main configuration for the Client.
type Config struct {
	// Source is the data source configuration
	Source SourceConfig `json:"source" yaml:"source"`
	// Cache is the cache configuration
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// AppIDs pins the catalog window to these apps, in this order
	AppIDs []int `json:"app_ids,omitempty" yaml:"app_ids,omitempty"`
	// MaxApps bounds the catalog window when AppIDs is empty
	MaxApps int `json:"max_apps" yaml:"max_apps"`
	// MaxConcurrentRequests bounds the detail fan-out of one query
	MaxConcurrentRequests int `json:"max_concurrent_requests" yaml:"max_concurrent_requests"`
	// UserAgent is the user agent string for HTTP requests
	UserAgent string `json:"user_agent" yaml:"user_agent"`
	// Locale is the BCP 47 locale used to order names
	Locale string `json:"locale" yaml:"locale"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source:                DefaultSourceConfig(),
		Cache:                 DefaultCacheConfig(),
		MaxApps:               100,
		MaxConcurrentRequests: 10,
		UserAgent:             "game-catalog/1.0",
		Locale:                "en",
	}
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	if c.Source.Name == "" {
		return &ConfigError{Field: "source.name", Details: "must not be empty"}
	}
	if c.MaxConcurrentRequests < 1 {
		return &ConfigError{Field: "max_concurrent_requests", Details: "must be > 0"}
	}
	if len(c.AppIDs) == 0 && c.MaxApps < 1 {
		return &ConfigError{Field: "max_apps", Details: "must be > 0 when no app_ids are pinned"}
	}
	switch c.Cache.Backend {
	case "memory", "redis", "sqlite", "null", "none", "":
	default:
		return &ConfigError{Field: "cache.backend", Details: "unknown backend " + c.Cache.Backend}
	}
	if (c.Cache.Backend == "redis" || c.Cache.Backend == "sqlite") && c.Cache.ConnectionString == "" {
		return &ConfigError{Field: "cache.connection_string", Details: "required for " + c.Cache.Backend}
	}
	return nil
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithSource selects a registered source by name.
func WithSource(cfg SourceConfig) Option {
	return func(c *Config) {
		c.Source = cfg
	}
}

// WithSteamSource configures the live store source. An empty baseURL uses
// the public store endpoints; otherwise requests go to the given proxy.
func WithSteamSource(baseURL string) Option {
	return func(c *Config) {
		c.Source.Name = "steam"
		c.Source.BaseURL = baseURL
	}
}

// WithMockSource configures the in-memory mock source.
func WithMockSource() Option {
	return func(c *Config) {
		c.Source.Name = "mock"
		c.Source.BaseURL = ""
	}
}

// WithRateLimit limits outgoing source requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Config) {
		c.Source.RateLimit = perSecond
	}
}

// WithTimeout sets the source request timeout.
func WithTimeout(seconds int) Option {
	return func(c *Config) {
		c.Source.Timeout = seconds
	}
}

// WithCache configures the cache backend.
func WithCache(backend string, ttl, maxSize int) Option {
	return func(c *Config) {
		c.Cache.Backend = backend
		c.Cache.TTL = ttl
		c.Cache.MaxSize = maxSize
	}
}

// WithRedisCache configures a Redis cache backend.
func WithRedisCache(connectionString string, ttl int) Option {
	return func(c *Config) {
		c.Cache.Backend = "redis"
		c.Cache.ConnectionString = connectionString
		c.Cache.TTL = ttl
	}
}

// WithSQLiteCache configures a SQLite cache backend.
func WithSQLiteCache(dbPath string, ttl int) Option {
	return func(c *Config) {
		c.Cache.Backend = "sqlite"
		c.Cache.ConnectionString = dbPath
		c.Cache.TTL = ttl
	}
}

// WithoutCache disables caching.
func WithoutCache() Option {
	return func(c *Config) {
		c.Cache.Backend = "none"
	}
}

// WithAppIDs pins the catalog window to the given apps.
func WithAppIDs(ids ...int) Option {
	return func(c *Config) {
		c.AppIDs = ids
	}
}

// WithMaxApps bounds the catalog window.
func WithMaxApps(n int) Option {
	return func(c *Config) {
		c.MaxApps = n
	}
}

// WithMaxConcurrentRequests sets the maximum concurrent detail requests.
func WithMaxConcurrentRequests(max int) Option {
	return func(c *Config) {
		c.MaxConcurrentRequests = max
	}
}

// WithUserAgent sets the user agent string.
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithLocale sets the locale used to order names.
func WithLocale(locale string) Option {
	return func(c *Config) {
		c.Locale = locale
	}
}
