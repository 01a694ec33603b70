package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it no longer follows any
// single caller's context
const DefaultLoadTimeout = 30 * time.Second

// Loader caches JSON-encoded values of type T and coalesces concurrent loads
// of the same key into a single call. Cache failures are logged and the value
// is loaded directly, so a broken cache never fails a request.
type Loader[T any] struct {
	store       Store
	prefix      string
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	logger      *zap.Logger
}

// NewLoader creates a loader storing entries under prefix for ttl. A nil
// store or a non-positive ttl disables caching but keeps coalescing.
func NewLoader[T any](store Store, prefix string, ttl time.Duration, logger *zap.Logger) *Loader[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader[T]{
		store:       store,
		prefix:      prefix,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger,
	}
}

// Get returns the cached value for key or calls load and caches its result.
// Errors from load are returned and not cached.
//
// The shared load keeps the first caller's context values but not its
// cancellation, and is bounded by the load timeout instead. Each caller
// stops waiting when its own ctx is done.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	fullKey := l.prefix + key

	if v, ok := l.lookup(ctx, fullKey); ok {
		return v, nil
	}

	ch := l.group.DoChan(fullKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.loadTimeout)
		defer cancel()

		// a concurrent flight may have filled the cache already
		if v, ok := l.lookup(loadCtx, fullKey); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		l.save(loadCtx, fullKey, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (l *Loader[T]) enabled() bool {
	return l.store != nil && l.ttl > 0
}

func (l *Loader[T]) lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	if !l.enabled() {
		return zero, false
	}

	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if !found {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		l.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = l.store.Delete(ctx, key)
		return zero, false
	}
	return v, true
}

func (l *Loader[T]) save(ctx context.Context, key string, v T) {
	if !l.enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		l.logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := l.store.Set(ctx, key, raw, l.ttl); err != nil {
		l.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
