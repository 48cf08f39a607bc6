package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "smm_webpanel", cfg.DBName)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.RunMigrations)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "smtp.example.com:2525", cfg.SMTP.Addr())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty secret", map[string]string{"JWT_SECRET": ""}},
		{"bcrypt cost too low", map[string]string{"JWT_SECRET": "s", "BCRYPT_COST": "2"}},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "JWT_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadRateLimitConfig("AUTH_RATE_LIMIT_", DefaultAuthRateLimit())
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 5, cfg.Capacity)
		assert.Equal(t, "rl:auth", cfg.Prefix)
		assert.Equal(t, "ip", cfg.KeyStrategy)
	})

	t.Run("overlay", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_CAPACITY", "250")
		t.Setenv("RATE_LIMIT_ENABLED", "false")
		cfg := LoadRateLimitConfig("RATE_LIMIT_", DefaultAPIRateLimit())
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 250, cfg.Capacity)
		assert.Equal(t, 9*time.Second, cfg.RefillInterval)
	})

	t.Run("clamps", func(t *testing.T) {
		cfg := LoadRateLimitConfig("NOPE_", RateLimitConfig{RefillInterval: time.Minute, TTL: time.Second})
		assert.Equal(t, 1, cfg.Capacity)
		assert.Equal(t, 1, cfg.RefillTokens)
		assert.Equal(t, 5*time.Minute, cfg.TTL)
		assert.Equal(t, "rl", cfg.Prefix)
	})
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "1m")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, time.Minute, cfg.TTL)
	assert.Equal(t, "cache", cfg.Prefix)
}

func TestRedisConfigAddress(t *testing.T) {
	assert.Equal(t, "localhost:6379", RedisConfig{Addr: "localhost:6379"}.Address())
	assert.Equal(t, "redis:6380", RedisConfig{Host: "redis", Port: "6380", Addr: "x:1"}.Address())
}
