package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// Item represents a line item of an order
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// Amount returns Quantity * Price
func (i Item) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the authoritative purchase record owned by the storefront backend.
// Only the fields the fulfillment engine reads are modelled.
type Order struct {
	shared.EventRecorder
	ID              string
	CustomerID      string
	Status          Status
	TotalAmount     decimal.Decimal
	Items           []Item
	RejectionReason string
	RefundReason    string
	Note            string
	ContactName     string
	ContactPhone    string
	ContactAddress  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the structural invariants of an order
func (o *Order) Validate() error {
	if err := o.validateShape(); err != nil {
		return err
	}
	if !o.Status.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Order %s has unknown status %q", o.ID, o.Status))
	}
	return nil
}

// validateShape checks everything but the status
func (o *Order) validateShape() error {
	if strings.TrimSpace(o.ID) == "" {
		return shared.NewDomainError(shared.CodeValidation, "Order ID cannot be empty")
	}
	if o.TotalAmount.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Order total cannot be negative")
	}
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %d quantity must be positive", i+1))
		}
		if item.Price.IsNegative() {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %d price cannot be negative", i+1))
		}
	}
	return nil
}

// ItemCount returns the number of distinct line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a copy of the order without pending domain events
func (o *Order) Clone() *Order {
	c := *o
	c.EventRecorder = shared.EventRecorder{}
	c.Items = make([]Item, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

// Approve moves a pending order to approved
func (o *Order) Approve() error {
	if err := CheckTransition(o.Status, StatusApproved, ""); err != nil {
		return err
	}
	if o.Status == StatusApproved {
		return nil
	}
	from := o.Status
	o.Status = StatusApproved
	o.touch()
	o.AddDomainEvent(NewOrderApprovedEvent(o, from))
	return nil
}

// Reject rejects the order with a mandatory reason
func (o *Order) Reject(reason string) error {
	if err := CheckTransition(o.Status, StatusRejected, reason); err != nil {
		return err
	}
	if o.Status == StatusRejected {
		return nil
	}
	from := o.Status
	o.Status = StatusRejected
	o.RejectionReason = strings.TrimSpace(reason)
	o.touch()
	o.AddDomainEvent(NewOrderRejectedEvent(o, from))
	return nil
}

// Refund refunds a rejected order. The refund reason is optional.
func (o *Order) Refund(reason string) error {
	if err := CheckRefund(o.Status); err != nil {
		return err
	}
	if o.Status == StatusRefunded {
		return nil
	}
	from := o.Status
	o.Status = StatusRefunded
	o.RefundReason = strings.TrimSpace(reason)
	o.touch()
	o.AddDomainEvent(NewOrderRefundedEvent(o, from))
	return nil
}

// Transition applies a requested status through the matching entity method
func (o *Order) Transition(requested Status, reason string) error {
	switch requested {
	case StatusApproved:
		return o.Approve()
	case StatusRejected:
		return o.Reject(reason)
	case StatusRefunded:
		return o.Refund(reason)
	default:
		return CheckTransition(o.Status, requested, reason)
	}
}

// touch advances UpdatedAt without ever moving it backwards
func (o *Order) touch() {
	now := time.Now()
	if now.After(o.UpdatedAt) {
		o.UpdatedAt = now
	}
}

// Snapshot is an immutable copy of the order fields used to seed a shipping
// log and carried in events
type Snapshot struct {
	ID             string          `json:"id"`
	Status         Status          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ItemCount      int             `json:"item_count"`
	TotalQuantity  int             `json:"total_quantity"`
	Items          []Item          `json:"-"`
	ContactName    string          `json:"contact_name,omitempty"`
	ContactPhone   string          `json:"contact_phone,omitempty"`
	ContactAddress string          `json:"contact_address,omitempty"`
}

// Snapshot returns the current snapshot of the order
func (o *Order) Snapshot() Snapshot {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	return Snapshot{
		ID:             o.ID,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		ItemCount:      o.ItemCount(),
		TotalQuantity:  o.TotalQuantity(),
		Items:          items,
		ContactName:    o.ContactName,
		ContactPhone:   o.ContactPhone,
		ContactAddress: o.ContactAddress,
	}
}
