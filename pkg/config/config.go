// Package config loads the catalogd configuration from a YAML file, a .env
// file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/internal/normalization"
	"github.com/josegonzalez/game-catalog/pkg/logging"
	"github.com/josegonzalez/game-catalog/pkg/tracing"
)

// Config holds application configuration.
type Config struct {
	Catalog catalog.Config `yaml:"catalog"`
	Server  ServerConfig   `yaml:"server"`
	Logging logging.Config `yaml:"logging"`
	Tracing tracing.Config `yaml:"tracing"`
}

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	Mode            string `yaml:"mode"` // gin mode: "release", "debug", "test"
	ReadTimeout     int    `yaml:"read_timeout"`
	WriteTimeout    int    `yaml:"write_timeout"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"`
}

// ReadTimeoutDuration returns the read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return seconds(s.ReadTimeout, 30)
}

// WriteTimeoutDuration returns the write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return seconds(s.WriteTimeout, 30)
}

// ShutdownTimeoutDuration returns how long shutdown waits for open requests.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return seconds(s.ShutdownTimeout, 10)
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: catalog.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
		Logging: logging.DefaultConfig(),
		Tracing: tracing.DefaultConfig(),
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		"catalog.yaml",
		"catalog.yml",
		filepath.Join("config", "catalog.yaml"),
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "game-catalog", "config.yaml"),
			filepath.Join(home, ".config", "game-catalog", "config.yml"),
		)
	}

	return paths
}

// Load loads configuration. A .env file in the working directory is read
// first, then the config file, then environment overrides.
// Priority: env CATALOG_CONFIG > search paths > defaults
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if envPath := os.Getenv("CATALOG_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
	} else {
		for _, path := range configPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := cfg.loadFromFile(path); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads defaults overlaid with one YAML file, without reading
// the environment.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.loadFromFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &catalog.ConfigError{Details: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CATALOG_SOURCE"); v != "" {
		c.Catalog.Source.Name = v
	}
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		c.Catalog.Source.BaseURL = v
	}
	if v := os.Getenv("CATALOG_STEAM_KEY"); v != "" {
		if c.Catalog.Source.Credentials == nil {
			c.Catalog.Source.Credentials = map[string]string{}
		}
		c.Catalog.Source.Credentials["key"] = v
	}
	if v := os.Getenv("CATALOG_CACHE"); v != "" {
		c.Catalog.Cache.Backend = v
	}
	if v := os.Getenv("CATALOG_CACHE_DSN"); v != "" {
		c.Catalog.Cache.ConnectionString = v
	}
	if v := os.Getenv("CATALOG_LOCALE"); v != "" {
		c.Catalog.Locale = v
	}
	if v := os.Getenv("CATALOG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CATALOG_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = v
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"CATALOG_CACHE_TTL", &c.Catalog.Cache.TTL},
		{"CATALOG_MAX_APPS", &c.Catalog.MaxApps},
		{"CATALOG_TIMEOUT", &c.Catalog.Source.Timeout},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &catalog.ConfigError{Field: o.env, Details: fmt.Sprintf("not an integer: %q", v)}
		}
		*o.dst = n
	}

	if v := os.Getenv("CATALOG_APP_IDS"); v != "" {
		ids, err := parseAppIDs(v)
		if err != nil {
			return err
		}
		c.Catalog.AppIDs = ids
	}
	return nil
}

// parseAppIDs parses a comma separated list of app ids.
func parseAppIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, &catalog.ConfigError{Field: "CATALOG_APP_IDS", Details: fmt.Sprintf("invalid app id %q", part)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return &catalog.ConfigError{Field: "server.addr", Details: "must not be empty"}
	}
	return nil
}

// Options returns the catalog client options for this configuration.
func (c *Config) Options() []catalog.Option {
	return []catalog.Option{catalog.WithConfig(c.Catalog)}
}

// MaskedCredentials returns the source credentials with values masked for
// logging.
func (c *Config) MaskedCredentials() map[string]string {
	return normalization.MaskSensitiveValues(c.Catalog.Source.Credentials)
}

// CacheTarget returns the cache connection string safe for logging.
func (c *Config) CacheTarget() string {
	target := normalization.StripSensitiveQueryParams(c.Catalog.Cache.ConnectionString)
	if u, err := url.Parse(target); err == nil && u.User != nil {
		return u.Redacted()
	}
	return target
}
