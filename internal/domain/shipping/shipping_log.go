package shipping

import (
	"fmt"
	"strings"
	"time"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// ShippingLog tracks the physical fulfillment of one order
type ShippingLog struct {
	shared.EventRecorder
	ID                string
	Order             OrderRef
	Status            Status
	RawStatus         string
	TrackingNumber    string
	Carrier           string
	CurrentLocation   string
	Recipient         Recipient
	ProductSummary    ProductSummary
	Notes             string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderID returns the id of the linked order, or "" when unlinked
func (l *ShippingLog) OrderID() string {
	if l == nil || l.Order == nil {
		return ""
	}
	return l.Order.OrderID()
}

// NewForApprovedOrder provisions a shipping log from an approved order.
// Logs are never created for orders that have not been approved.
func NewForApprovedOrder(snap order.Snapshot, carrier string) (*ShippingLog, error) {
	if snap.ID == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Cannot create a shipping log without an order")
	}
	if snap.Status != order.StatusApproved && snap.Status != order.StatusDelivered {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot create a shipping log for an order in %s status", snap.Status))
	}

	now := time.Now()
	log := &ShippingLog{
		Order:  EmbeddedOrder{Snapshot: snap},
		Status: StatusPending,
		Recipient: Recipient{
			Name:    snap.ContactName,
			Phone:   snap.ContactPhone,
			Address: snap.ContactAddress,
		},
		ProductSummary: SummaryFromSnapshot(snap),
		Carrier:        carrier,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	log.AddDomainEvent(NewShippingLogCreatedEvent(log))
	return log, nil
}

// StatusUpdate is a staff status change
type StatusUpdate struct {
	Status          Status
	CurrentLocation string
	Notes           string
	ActualDelivery  *time.Time
}

// Validate checks the update can be sent upstream
func (u StatusUpdate) Validate() error {
	if !u.Status.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown shipping status %q", u.Status))
	}
	if u.ActualDelivery != nil && !u.Status.IsDeliveredState() {
		return shared.NewDomainError(shared.CodeValidation, "Actual delivery can only be set for Delivered or Received shipments")
	}
	return nil
}

// WithDeliveryStamp fills ActualDelivery when the update reaches the
// customer and none was supplied
func (u StatusUpdate) WithDeliveryStamp(now time.Time) StatusUpdate {
	if u.Status.IsDeliveredState() && u.ActualDelivery == nil {
		t := now
		u.ActualDelivery = &t
	}
	return u
}

// ApplyStatus applies a staff status change. Any value is accepted; the
// return value reports whether the move followed the expected progression.
func (l *ShippingLog) ApplyStatus(u StatusUpdate, now time.Time) bool {
	forward := u.Status.IsForwardOf(l.Status)
	from := l.Status

	l.Status = u.Status
	l.RawStatus = string(u.Status)
	if u.CurrentLocation != "" {
		l.CurrentLocation = strings.TrimSpace(u.CurrentLocation)
	}
	if u.Notes != "" {
		l.Notes = u.Notes
	}
	if u.Status.IsDeliveredState() {
		switch {
		case u.ActualDelivery != nil:
			t := *u.ActualDelivery
			l.ActualDelivery = &t
		case l.ActualDelivery == nil:
			t := now
			l.ActualDelivery = &t
		}
	}
	if now.After(l.UpdatedAt) {
		l.UpdatedAt = now
	}
	if from != u.Status {
		l.AddDomainEvent(NewShippingStatusChangedEvent(l, from, forward))
	}
	return forward
}

// NormalizeLog builds a ShippingLog from the upstream's loosely typed JSON.
// Order references, recipients and product summaries are resolved here and
// nowhere else.
func NormalizeLog(raw shared.Raw) (*ShippingLog, error) {
	if raw == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shipping log payload is empty")
	}
	id := shared.FirstString(raw, "_id", "id")
	if id == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shipping log has no id")
	}

	ref := raw["orderId"]
	if ref == nil {
		ref = raw["order"]
	}

	rawStatus := shared.FirstString(raw, "status")
	log := &ShippingLog{
		ID:                id,
		Order:             ResolveOrderRef(ref),
		Status:            ParseStatus(rawStatus),
		RawStatus:         rawStatus,
		TrackingNumber:    shared.FirstString(raw, "trackingNumber"),
		Carrier:           shared.FirstString(raw, "carrier", "shippingProvider"),
		CurrentLocation:   shared.FirstString(raw, "currentLocation"),
		Recipient:         ResolveRecipient(raw),
		ProductSummary:    ResolveProductSummary(raw),
		Notes:             shared.FirstString(raw, "notes", "note"),
		EstimatedDelivery: shared.Time(raw, "estimatedDelivery"),
		ActualDelivery:    shared.Time(raw, "actualDelivery"),
	}
	if t := shared.Time(raw, "createdAt"); t != nil {
		log.CreatedAt = *t
	}
	if t := shared.Time(raw, "updatedAt"); t != nil {
		log.UpdatedAt = *t
	}
	return log, nil
}
