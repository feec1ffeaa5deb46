package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig defines settings for the GET response cache. When Enabled is
// false or no Redis client is available, caching is disabled. The cache is
// applied to read-heavy routes (dashboard aggregates, paginated lists)
// where a short TTL of staleness is acceptable.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// RateLimitConfig defines settings for the per-client request limiter.
// Window counts reset every Window duration.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_* environment variables, applying defaults
// when unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}

// LoadRateLimitConfig reads RATE_LIMIT_* environment variables, applying
// defaults when unset.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoi(getenv("RATE_LIMIT_REQUESTS", "120")),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
