package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/config"
	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
)

// RedisKeyPrefix namespaces the keys written by the redis backend
const RedisKeyPrefix = "recipe-generator:"

// OpenStore builds the key-value backend named by cfg.StorageBackend. SQL
// backends are migrated before use. redisClient may be nil unless the redis
// backend is selected. The returned func releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (storage.Store, func(), error) {
	noop := func() {}
	log.Info("Opening storage", zap.String("backend", cfg.StorageBackend))

	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemoryStore(), noop, nil
	case config.StorageSQLite, config.StoragePostgres:
		db, err := Open(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(db, log); err != nil {
			_ = Close(db)
			return nil, nil, err
		}
		return storage.NewSQLStore(db), func() { _ = Close(db) }, nil
	case config.StorageRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("storage backend %q requires REDIS_URL or REDIS_HOST", cfg.StorageBackend)
		}
		return storage.NewRedisStore(redisClient, RedisKeyPrefix), noop, nil
	case config.StorageS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		return storage.NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.Prefix), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
