package config

import (
	"fmt"
	"time"

	"github.com/joshdurbin/shortlinks/internal/shortener"
)

// Database driver identifiers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Cache backend identifiers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Shortener shortener.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port    string
	BaseURL string // public base used to compose display URLs
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver string
	Path   string // sqlite file path
	DSN    string // postgres connection string
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Backend   string
	RedisAddr string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	CreatePerMinute int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool
}

// New creates a new config with the given parameters
func New(server ServerConfig, db DatabaseConfig, cache CacheConfig, rl RateLimitConfig, logging LoggingConfig, gen shortener.Config) (*Config, error) {
	cfg := &Config{
		Server:    server,
		Database:  db,
		Cache:     cache,
		RateLimit: rl,
		Logging:   logging,
		Shortener: gen,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL cannot be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN cannot be empty for postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for redis cache")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}

	if c.RateLimit.CreatePerMinute <= 0 {
		return fmt.Errorf("create rate limit must be positive, got: %d", c.RateLimit.CreatePerMinute)
	}

	if c.Shortener.CodeLength < 4 || c.Shortener.CodeLength > 20 {
		return fmt.Errorf("code length must be between 4 and 20, got: %d", c.Shortener.CodeLength)
	}

	if c.Shortener.MaxAttempts <= 0 {
		return fmt.Errorf("generator max attempts must be positive, got: %d", c.Shortener.MaxAttempts)
	}

	return nil
}

// shutdownTimeout bounds graceful shutdown and startup waits.
const shutdownTimeout = 30 * time.Second

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return shutdownTimeout
}
