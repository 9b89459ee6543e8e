package shipping

import (
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeShippingLog = "ShippingLog"

// Event type constants
const (
	EventTypeShippingLogCreated    = "ShippingLogCreated"
	EventTypeShippingStatusChanged = "ShippingStatusChanged"
)

// ShippingLogCreatedEvent is raised when a shipment record is provisioned
// for an approved order
type ShippingLogCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
	Carrier string `json:"carrier,omitempty"`
}

// NewShippingLogCreatedEvent creates a new ShippingLogCreatedEvent.
// The log id is not known until the upstream assigns one, so the event is
// keyed by order.
func NewShippingLogCreatedEvent(log *ShippingLog) *ShippingLogCreatedEvent {
	return &ShippingLogCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShippingLogCreated, AggregateTypeShippingLog, log.OrderID()),
		OrderID:         log.OrderID(),
		Status:          log.Status,
		Carrier:         log.Carrier,
	}
}

// ShippingStatusChangedEvent is raised when staff change a shipment status
type ShippingStatusChangedEvent struct {
	shared.BaseDomainEvent
	LogID      string `json:"log_id"`
	OrderID    string `json:"order_id"`
	FromStatus Status `json:"from_status"`
	ToStatus   Status `json:"to_status"`
	Forward    bool   `json:"forward"`
}

// NewShippingStatusChangedEvent creates a new ShippingStatusChangedEvent
func NewShippingStatusChangedEvent(log *ShippingLog, from Status, forward bool) *ShippingStatusChangedEvent {
	return &ShippingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShippingStatusChanged, AggregateTypeShippingLog, log.ID),
		LogID:           log.ID,
		OrderID:         log.OrderID(),
		FromStatus:      from,
		ToStatus:        log.Status,
		Forward:         forward,
	}
}
