package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
)

// MeterName is the instrumentation scope of the fulfillment metrics
const MeterName = "fulfillment"

// TransitionMetrics records order transition metrics
type TransitionMetrics struct {
	transitionTotal    *Counter   // order_transition_total
	transitionDuration *Histogram // order_transition_duration_seconds
	secondaryFailures  *Counter   // order_transition_secondary_failure_total
	cacheLookups       *Counter   // status_cache_lookup_total
}

var _ fulfillment.Metrics = (*TransitionMetrics)(nil)

// NewTransitionMetrics creates the transition instruments on meter
func NewTransitionMetrics(meter metric.Meter) (*TransitionMetrics, error) {
	transitionTotal, err := NewCounter(
		meter,
		"order_transition_total",
		"Order status transitions by outcome",
		"{transition}",
	)
	if err != nil {
		return nil, err
	}

	transitionDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "order_transition_duration_seconds",
		Description: "Order status transition latency in seconds",
		Unit:        "s",
		Boundaries:  TransitionDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	secondaryFailures, err := NewCounter(
		meter,
		"order_transition_secondary_failure_total",
		"Committed transitions whose follow-up effect failed",
		"{transition}",
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := NewCounter(
		meter,
		"status_cache_lookup_total",
		"Unified status cache lookups by result",
		"{lookup}",
	)
	if err != nil {
		return nil, err
	}

	return &TransitionMetrics{
		transitionTotal:    transitionTotal,
		transitionDuration: transitionDuration,
		secondaryFailures:  secondaryFailures,
		cacheLookups:       cacheLookups,
	}, nil
}

// RecordTransition counts one transition attempt and its latency
func (m *TransitionMetrics) RecordTransition(ctx context.Context, from, to, outcome string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{AttrFromStatus.String(from), AttrToStatus.String(to), AttrOutcome.String(outcome)}
	m.transitionTotal.Inc(ctx, attrs...)
	m.transitionDuration.RecordDuration(ctx, elapsed, attrs...)
}

// RecordSecondaryFailure counts a failed follow-up effect
func (m *TransitionMetrics) RecordSecondaryFailure(ctx context.Context, to string) {
	m.secondaryFailures.Inc(ctx, AttrToStatus.String(to))
}

// RecordCacheLookup counts a status cache hit or miss
func (m *TransitionMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheLookups.Inc(ctx, AttrCacheHit.Bool(hit))
}
