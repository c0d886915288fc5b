package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// NewIdempotencyStore builds the store selected by event.idempotency_backend.
// When Redis is selected but unreachable outside production, it falls back to
// the in-memory store with a warning.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if cfg.Event.IdempotencyBackend != "redis" {
		return NewInMemoryIdempotencyStore(0), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.App.IsProduction() {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr(), err)
		}
		logger.Warn("Redis unavailable, using in-memory idempotency store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(0), nil
	}

	logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	return NewRedisIdempotencyStore(client, ""), nil
}
