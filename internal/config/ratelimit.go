package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// RateLimitConfig configures one Redis token bucket. The same struct backs
// the general /api limiter (RATE_LIMIT_*) and the strict auth limiter
// (AUTH_RATE_LIMIT_*).
type RateLimitConfig struct {
	Enabled        bool          `env:"ENABLED"`
	Capacity       int           `env:"CAPACITY"`
	RefillTokens   int           `env:"REFILL_TOKENS"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL"`
	TTL            time.Duration `env:"TTL"`
	KeyStrategy    string        `env:"KEY_STRATEGY"`
	Prefix         string        `env:"PREFIX"`
	Message        string        `env:"MESSAGE"`
	Debug          bool          `env:"DEBUG"`
}

// DefaultAPIRateLimit allows 100 requests per 15 minutes per client IP.
func DefaultAPIRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		Capacity:       100,
		RefillTokens:   1,
		RefillInterval: 9 * time.Second,
		TTL:            15 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl:api",
		Message:        "Too many requests from this IP, please try again later.",
	}
}

// DefaultAuthRateLimit allows 5 login or register attempts per 15 minutes.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: 3 * time.Minute,
		TTL:            15 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl:auth",
		Message:        "Too many authentication attempts, please try again later.",
	}
}

// LoadRateLimitConfig overlays the variables named prefix+FIELD on def and
// clamps the result to usable values.
func LoadRateLimitConfig(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		cfg = def
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return cfg
}
