package lock

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Redis *redis.Client `optional:"true"`
}

// New prefers a Redis lock when a client is configured.
func New(p Params) Locker {
	if p.Redis != nil {
		p.Log.Named("lock").Info("using redis locker")
		return NewRedisLocker(p.Redis, "pike:lock:")
	}
	return NewLocalLocker()
}
