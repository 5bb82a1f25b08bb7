package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the redis server used for rate limiting.
type RedisConfig struct {
	Addr     string `koanf:"redis_addr"`
	Password string `koanf:"redis_password"`
	DB       int    `koanf:"redis_db"`
	TLS      bool   `koanf:"redis_tls"`
}

// NewRedisClient connects to redis and pings it.  It returns nil when the
// server is unreachable; callers degrade by disabling rate limiting.
func NewRedisClient(ctx context.Context, cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
