package fulfillment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// Notification types
const (
	NotificationOrderApproved   = "order.approved"
	NotificationOrderRejected   = "order.rejected"
	NotificationOrderRefunded   = "order.refunded"
	NotificationShipmentCreated = "shipment.created"
	NotificationShipmentUpdated = "shipment.updated"
)

// NotificationHandler turns committed domain events into customer
// notifications
type NotificationHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderApproved,
		order.EventTypeOrderRejected,
		order.EventTypeOrderRefunded,
		shipping.EventTypeShippingLogCreated,
		shipping.EventTypeShippingStatusChanged,
	}
}

// Handle builds and sends the notification for one event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, ok := h.build(event)
	if !ok {
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	n.OccurredAt = event.OccurredAt()

	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.Warn("failed to send notification",
			zap.String("type", n.Type),
			zap.String("order_id", n.OrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (h *NotificationHandler) build(event shared.DomainEvent) (Notification, bool) {
	switch e := event.(type) {
	case *order.OrderApprovedEvent:
		return Notification{
			Type:    NotificationOrderApproved,
			OrderID: e.OrderID,
			Status:  string(e.ToStatus),
			Message: "Your order has been approved and is being prepared for shipment",
		}, true
	case *order.OrderRejectedEvent:
		return Notification{
			Type:    NotificationOrderRejected,
			OrderID: e.OrderID,
			Status:  string(e.ToStatus),
			Message: "Your order was rejected: " + e.Reason,
		}, true
	case *order.OrderRefundedEvent:
		return Notification{
			Type:    NotificationOrderRefunded,
			OrderID: e.OrderID,
			Status:  string(e.ToStatus),
			Message: "A refund of " + e.TotalAmount.StringFixed(0) + " has been issued for your order",
		}, true
	case *shipping.ShippingLogCreatedEvent:
		msg := "Your shipment has been created"
		if e.Carrier != "" {
			msg += " with " + e.Carrier
		}
		return Notification{
			Type:    NotificationShipmentCreated,
			OrderID: e.OrderID,
			Status:  string(e.Status),
			Message: msg,
		}, true
	case *shipping.ShippingStatusChangedEvent:
		return Notification{
			Type:    NotificationShipmentUpdated,
			OrderID: e.OrderID,
			Status:  string(e.ToStatus),
			Message: "Your shipment is now " + string(e.ToStatus),
		}, true
	}
	return Notification{}, false
}
