package redisclient

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pike/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New returns a shared Redis client, or nil when no address is configured.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}
	if log != nil {
		log.Info("redis client configured", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
	}
	return client
}

var Module = fx.Module("redis.client", fx.Provide(New))
