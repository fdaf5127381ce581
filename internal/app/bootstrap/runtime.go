// Package bootstrap wires shared runtime dependencies for the web
// gateway.
package bootstrap

import (
	"context"
	"crypto/tls"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/medicarehq/pharmacy-web/internal/config"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// BuildRedisClient constructs the redis client backing sessions, UI state,
// and carts. With verify set it pings first and returns nil when redis is
// unreachable so the caller can fail fast.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		return nil
	}
	return client
}
