package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewStore returns a Redis-backed store when client is non-nil, otherwise an
// in-memory store. In-memory entries are not shared between instances.
func NewStore(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) Store {
	if client != nil {
		logger.Info("Using Redis cache", zap.String("prefix", keyPrefix))
		return NewRedisStore(client, keyPrefix)
	}
	logger.Info("Using in-memory cache", zap.String("prefix", keyPrefix))
	return NewMemoryStore(time.Minute)
}
