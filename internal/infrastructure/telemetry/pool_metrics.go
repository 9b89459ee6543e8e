package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Journal connection pool instrument names
const (
	MetricDBPoolConnections    = "db_pool_connections"
	MetricDBPoolConnectionsMax = "db_pool_connections_max"
	MetricDBPoolWaitTotal      = "db_pool_wait_total"
)

// AttrDBState labels pool connections by state
var AttrDBState = attribute.Key("state")

// RegisterPoolMetrics reports the journal's sql.DB pool statistics as
// observable instruments, read on each collection. Unregister the returned
// registration before closing the database.
func RegisterPoolMetrics(meter metric.Meter, sqlDB *sql.DB) (metric.Registration, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("pool metrics require a database handle")
	}

	connections, err := meter.Int64ObservableGauge(MetricDBPoolConnections,
		metric.WithDescription("Journal pool connections by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", MetricDBPoolConnections, err)
	}
	maxOpen, err := meter.Int64ObservableGauge(MetricDBPoolConnectionsMax,
		metric.WithDescription("Maximum open journal connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", MetricDBPoolConnectionsMax, err)
	}
	waits, err := meter.Int64ObservableCounter(MetricDBPoolWaitTotal,
		metric.WithDescription("Times a journal query waited for a free connection"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", MetricDBPoolWaitTotal, err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, maxOpen, waits)
}
