package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	MaxOpen   int
	Open      int
	InUse     int
	Idle      int
	WaitCount int64
}

// PoolStatsFunc reads the current pool snapshot
type PoolStatsFunc func() (PoolStats, error)

// RegisterPoolMetrics exposes connection pool gauges read on every
// collection. The returned registration is unregistered on shutdown.
func RegisterPoolMetrics(meter metric.Meter, stats PoolStatsFunc) (metric.Registration, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for since startup"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s, err := stats()
		if err != nil {
			return err
		}
		o.ObserveInt64(maxOpen, int64(s.MaxOpen))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(s.Open), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, connections, maxOpen, waits)
}
