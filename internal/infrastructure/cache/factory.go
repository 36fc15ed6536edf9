package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/shared"
)

// NewIdempotencyStore returns a Redis-backed store when a client is given,
// and a process-local store otherwise
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client, "")
	}
	// Process-local state is not shared between replicas.
	logger.Warn("redis disabled, using in-memory idempotency store")
	return NewInMemoryIdempotencyStore()
}
