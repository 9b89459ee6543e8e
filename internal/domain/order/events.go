package order

import (
	"github.com/shopspring/decimal"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderApproved = "OrderApproved"
	EventTypeOrderRejected = "OrderRejected"
	EventTypeOrderRefunded = "OrderRefunded"
)

// StatusChange is embedded in every order status event
type StatusChange struct {
	OrderID    string `json:"order_id"`
	FromStatus Status `json:"from_status"`
	ToStatus   Status `json:"to_status"`
}

// OrderApprovedEvent is raised when an order is approved.
// This event triggers the shipment provisioning notice to the customer
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	StatusChange
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderApprovedEvent creates a new OrderApprovedEvent
func NewOrderApprovedEvent(o *Order, from Status) *OrderApprovedEvent {
	return &OrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeOrder, o.ID),
		StatusChange:    StatusChange{OrderID: o.ID, FromStatus: from, ToStatus: o.Status},
		TotalAmount:     o.TotalAmount,
		ItemCount:       o.ItemCount(),
	}
}

// OrderRejectedEvent is raised when an order is rejected
type OrderRejectedEvent struct {
	shared.BaseDomainEvent
	StatusChange
	Reason string `json:"reason"`
}

// NewOrderRejectedEvent creates a new OrderRejectedEvent
func NewOrderRejectedEvent(o *Order, from Status) *OrderRejectedEvent {
	return &OrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRejected, AggregateTypeOrder, o.ID),
		StatusChange:    StatusChange{OrderID: o.ID, FromStatus: from, ToStatus: o.Status},
		Reason:          o.RejectionReason,
	}
}

// OrderRefundedEvent is raised when a rejected order is refunded
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	StatusChange
	Reason      string          `json:"reason,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(o *Order, from Status) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, AggregateTypeOrder, o.ID),
		StatusChange:    StatusChange{OrderID: o.ID, FromStatus: from, ToStatus: o.Status},
		Reason:          o.RefundReason,
		TotalAmount:     o.TotalAmount,
	}
}
