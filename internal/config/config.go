// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs to run. Only DatabaseURL has no
// default.
type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	MigrationsDir string

	// TokenSecret signs player session tokens; TokenTTL is their lifetime.
	TokenSecret string
	TokenTTL    time.Duration

	// RedisURL enables the Redis-backed rate limiter when set. Empty means
	// the in-memory limiter, suitable for a single instance.
	RedisURL        string
	RateLimitPerMin int

	LogLevel  string
	LogPretty bool

	TracingEnabled bool
}

// Load reads configuration from environment variables, applying defaults for
// everything except DATABASE_URL.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getenv("AVALON_HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MigrationsDir:   getenv("MIGRATIONS_DIR", "migrations"),
		TokenSecret:     getenv("TOKEN_SECRET", "dev-secret-change-in-production"),
		TokenTTL:        24 * time.Hour,
		RedisURL:        os.Getenv("REDIS_URL"),
		RateLimitPerMin: 20,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogPretty:       boolenv("LOG_PRETTY", false),
		TracingEnabled:  boolenv("TRACING_ENABLED", false),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_PER_MIN: %w", err)
		}
		cfg.RateLimitPerMin = n
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
