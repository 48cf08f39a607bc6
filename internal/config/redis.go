package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis server used for rate limiting and the
// response cache. Addr is used when Host is empty.
type RedisConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	TLS      bool   `env:"TLS"`
}

// Address resolves the host:port pair to dial.
func (r RedisConfig) Address() string {
	if r.Host != "" {
		return r.Host + ":" + r.Port
	}
	return r.Addr
}

// LoadRedisConfig reads REDIS_* variables.
func LoadRedisConfig() RedisConfig {
	var cfg RedisConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "REDIS_"}); err != nil {
		return RedisConfig{Port: "6379", Addr: "localhost:6379"}
	}
	return cfg
}

// NewRedisClient connects to Redis and pings it. It returns nil when the
// server is unreachable; callers then run without cache and rate limits.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
