package event

import (
	"fmt"
	"slices"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// DomainEventTypes lists every event type the domain publishes
var DomainEventTypes = []string{
	order.EventTypeOrderApproved,
	order.EventTypeOrderRejected,
	order.EventTypeOrderRefunded,
	shipping.EventTypeShippingLogCreated,
	shipping.EventTypeShippingStatusChanged,
}

// SubscribeAll subscribes handlers to the bus. It fails without subscribing
// anything when a handler declares an unknown event type.
func SubscribeAll(bus shared.EventSubscriber, handlers ...shared.EventHandler) error {
	for _, h := range handlers {
		for _, t := range h.EventTypes() {
			if !slices.Contains(DomainEventTypes, t) {
				return fmt.Errorf("handler %T subscribes to unknown event type %q", h, t)
			}
		}
	}
	for _, h := range handlers {
		bus.Subscribe(h)
	}
	return nil
}
