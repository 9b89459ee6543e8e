package order

import (
	"context"
	"time"
)

// Gateway reads and mutates orders held by the storefront backend.
// Every method returns *shared.DomainError values for upstream failures.
type Gateway interface {
	// GetOrder fetches one order
	GetOrder(ctx context.Context, id string) (*Order, error)

	// UpdateStatus writes a plain status change
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)

	// Reject rejects an order with a mandatory reason
	Reject(ctx context.Context, id, reason, note string) (*Order, error)

	// Refund refunds a rejected order
	Refund(ctx context.Context, id, reason, note string) (*Order, error)
}

// TransitionRecord is one journal line for an orchestrated status change
type TransitionRecord struct {
	ID          string
	OrderID     string
	FromStatus  Status
	ToStatus    Status
	Outcome     string
	ErrorCode   string
	Warning     string
	Reason      string
	Actor       string
	RequestID   string
	ShippingLog string
	DurationMs  int64
	CreatedAt   time.Time
}

// TransitionJournal stores transition records
type TransitionJournal interface {
	// Record appends a record
	Record(ctx context.Context, rec *TransitionRecord) error

	// ListByOrder returns the records of one order, newest first
	ListByOrder(ctx context.Context, orderID string, limit int) ([]TransitionRecord, error)
}
