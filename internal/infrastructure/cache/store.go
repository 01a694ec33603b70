// Package cache provides the TTL caches behind report results and geocoding
// lookups. Redis is used when configured; otherwise entries live in process.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented cache with per-entry TTL. Implementations must be
// safe for concurrent use. A miss is reported as found=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
