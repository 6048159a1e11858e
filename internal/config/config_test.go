package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/shortlinks/internal/shortener"
)

func validInputs() (ServerConfig, DatabaseConfig, CacheConfig, RateLimitConfig, LoggingConfig, shortener.Config) {
	return ServerConfig{Port: "8080", BaseURL: "http://localhost:8080"},
		DatabaseConfig{Driver: DriverSQLite, Path: "test.db"},
		CacheConfig{Backend: CacheMemory},
		RateLimitConfig{CreatePerMinute: 20},
		LoggingConfig{},
		shortener.DefaultConfig()
}

func TestNewValidConfig(t *testing.T) {
	server, db, cache, rl, logging, gen := validInputs()

	cfg, err := New(server, db, cache, rl, logging, gen)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 20, cfg.RateLimit.CreatePerMinute)
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig, *DatabaseConfig, *CacheConfig, *RateLimitConfig, *shortener.Config)
	}{
		{
			name: "empty port",
			mutate: func(s *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				s.Port = ""
			},
		},
		{
			name: "empty base URL",
			mutate: func(s *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				s.BaseURL = ""
			},
		},
		{
			name: "unknown database driver",
			mutate: func(_ *ServerConfig, db *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				db.Driver = "oracle"
			},
		},
		{
			name: "sqlite without path",
			mutate: func(_ *ServerConfig, db *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				db.Path = ""
			},
		},
		{
			name: "postgres without DSN",
			mutate: func(_ *ServerConfig, db *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				db.Driver = DriverPostgres
				db.DSN = ""
			},
		},
		{
			name: "unknown cache backend",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, c *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				c.Backend = "memcached"
			},
		},
		{
			name: "redis without address",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, c *CacheConfig, _ *RateLimitConfig, _ *shortener.Config) {
				c.Backend = CacheRedis
				c.RedisAddr = ""
			},
		},
		{
			name: "non-positive rate limit",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, rl *RateLimitConfig, _ *shortener.Config) {
				rl.CreatePerMinute = 0
			},
		},
		{
			name: "code length too short",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, g *shortener.Config) {
				g.CodeLength = 3
			},
		},
		{
			name: "code length too long",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, g *shortener.Config) {
				g.CodeLength = 21
			},
		},
		{
			name: "non-positive max attempts",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *RateLimitConfig, g *shortener.Config) {
				g.MaxAttempts = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, db, cache, rl, logging, gen := validInputs()
			tt.mutate(&server, &db, &cache, &rl, &gen)

			_, err := New(server, db, cache, rl, logging, gen)
			assert.Error(t, err)
		})
	}
}

func TestMemoryDriverNeedsNoPath(t *testing.T) {
	server, db, cache, rl, logging, gen := validInputs()
	db = DatabaseConfig{Driver: DriverMemory}

	_, err := New(server, db, cache, rl, logging, gen)
	assert.NoError(t, err)
}
