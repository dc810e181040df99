package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backends bundles the coordination stores used by the sync and alert pipeline
type Backends struct {
	Idempotency shared.IdempotencyStore
	Locker      integration.SyncLocker
	// Redis is nil when running on in-memory backends
	Redis *redis.Client
}

// Close releases the Redis connection if one was opened
func (b *Backends) Close() error {
	if b.Redis != nil {
		return b.Redis.Close()
	}
	return nil
}

// NewBackends connects to Redis when one is configured and falls back to
// in-memory stores otherwise. With requireRedis set, a configured but
// unreachable Redis is an error instead of a fallback.
func NewBackends(ctx context.Context, cfg config.RedisConfig, requireRedis bool, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled() {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			logger.Info("Using Redis coordination backends", zap.String("addr", cfg.Addr()))
			return &Backends{
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Locker:      NewRedisSyncLocker(client),
				Redis:       client,
			}, nil
		}
		if requireRedis {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		logger.Warn("Redis unavailable, falling back to in-memory backends; locks and dedupe are per process",
			zap.Error(err))
	}

	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewInMemorySyncLocker(),
	}, nil
}
