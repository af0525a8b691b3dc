package storage

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/smallbiznis/pike/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(NewStore),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Redis     *redis.Client `optional:"true"`
}

// NewStore builds the blob store selected by storage.driver.
func NewStore(p Params) (Store, error) {
	cfg := p.Config.Storage
	log := p.Log.Named("storage")

	switch cfg.Driver {
	case config.StorageDisk:
		log.Info("using disk blob store", zap.String("root", cfg.Root))
		return NewDiskStore(cfg.Root)
	case config.StorageS3:
		client, err := NewS3Client(context.Background(), S3Options{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		log.Info("using s3 blob store", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix)
	case config.StorageRedis:
		log.Info("using redis blob store", zap.String("prefix", cfg.RedisPrefix))
		return NewRedisStore(p.Redis, cfg.RedisPrefix)
	case config.StorageDatabase:
		dbCfg := db.FromStorage(cfg)
		dialector, err := db.Dialect(dbCfg)
		if err != nil {
			return nil, err
		}
		conn, err := db.Open(dialector, dbCfg, logger.NewGormLogger(log, logger.DefaultGormLoggerConfig()))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
		log.Info("using database blob store", zap.String("type", dbCfg.Type))
		return NewDatabaseStore(conn)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidStorageDriver, cfg.Driver)
	}
}
