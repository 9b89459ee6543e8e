package fulfillment

import (
	"context"
	"time"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

// CachedStatus is a unified status together with the reconcile key it was
// computed from
type CachedStatus struct {
	Key    string                 `json:"key"`
	Status tracking.UnifiedStatus `json:"status"`
}

// StatusCache stores the last unified status per order
type StatusCache interface {
	Get(ctx context.Context, orderID string) (*CachedStatus, bool, error)
	Set(ctx context.Context, orderID string, status CachedStatus) error
	Invalidate(ctx context.Context, orderID string) error
}

// InFlightGuard marks an order as busy while a transition runs
type InFlightGuard interface {
	// Acquire returns a holder token, or false when the order is already held
	Acquire(ctx context.Context, orderID string) (string, bool, error)
	// Release clears the mark only while it still belongs to token
	Release(ctx context.Context, orderID, token string) error
}

// Metrics records transition and cache measurements
type Metrics interface {
	RecordTransition(ctx context.Context, from, to, outcome string, elapsed time.Duration)
	RecordSecondaryFailure(ctx context.Context, to string)
	RecordCacheLookup(ctx context.Context, hit bool)
}

// Notification is a customer-facing notice about an order
type Notification struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers customer notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(context.Context, string, string, string, time.Duration) {}

func (noopMetrics) RecordSecondaryFailure(context.Context, string) {}

func (noopMetrics) RecordCacheLookup(context.Context, bool) {}
