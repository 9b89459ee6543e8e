package shipping

import (
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// OrderRef links a shipping log to its order. The upstream sends either a
// bare id or an embedded order document; both are resolved once here.
type OrderRef interface {
	OrderID() string
	isOrderRef()
}

// OrderRefID is a reference by identifier only
type OrderRefID string

// OrderID returns the referenced order id
func (r OrderRefID) OrderID() string { return string(r) }

func (OrderRefID) isOrderRef() {}

// EmbeddedOrder is a reference that carries a denormalized order snapshot
type EmbeddedOrder struct {
	order.Snapshot
}

// OrderID returns the referenced order id
func (r EmbeddedOrder) OrderID() string { return r.ID }

func (EmbeddedOrder) isOrderRef() {}

// orderFields are the keys that mark an object as an order document rather
// than a plain id wrapper
var orderFields = []string{"status", "items", "totalAmount", "contactName", "contactPhone", "contactAddress"}

// ResolveOrderID extracts an order id from a bare string, an object with
// id/_id/orderId/orderID, or a nested order.{id|_id}. It returns "" when
// nothing resolves and never panics.
func ResolveOrderID(value any) string {
	obj, ok := shared.AsRaw(value)
	if !ok {
		switch value.(type) {
		case string, float64, int, int64:
			return shared.Scalar(value)
		}
		return ""
	}
	if id := shared.FirstString(obj, "id", "_id", "orderId", "orderID"); id != "" {
		return id
	}
	if nested, ok := shared.Object(obj, "order"); ok {
		return shared.FirstString(nested, "id", "_id")
	}
	return ""
}

// ResolveOrderRef turns an upstream order reference into an OrderRef.
// It returns nil when no id resolves.
func ResolveOrderRef(value any) OrderRef {
	id := ResolveOrderID(value)
	if id == "" {
		return nil
	}
	obj, ok := shared.AsRaw(value)
	if !ok {
		return OrderRefID(id)
	}
	if nested, ok := shared.Object(obj, "order"); ok && shared.FirstString(obj, "id", "_id", "orderId", "orderID") == "" {
		obj = nested
	}
	if !hasAny(obj, orderFields) {
		return OrderRefID(id)
	}
	return EmbeddedOrder{Snapshot: snapshotFromRaw(id, obj)}
}

func snapshotFromRaw(id string, raw shared.Raw) order.Snapshot {
	snap := order.Snapshot{
		ID:             id,
		ContactName:    shared.FirstString(raw, "contactName"),
		ContactPhone:   shared.FirstString(raw, "contactPhone"),
		ContactAddress: shared.FirstString(raw, "contactAddress", "shippingAddress"),
	}
	if status, err := order.ParseStatus(shared.FirstString(raw, "status")); err == nil {
		snap.Status = status
	}
	items := shared.Slice(raw, "items")
	snap.ItemCount = len(items)
	for _, v := range items {
		if item, ok := shared.AsRaw(v); ok {
			if q, ok := shared.Int(item, "quantity"); ok {
				snap.TotalQuantity += q
			}
		}
	}
	return snap
}

func hasAny(raw shared.Raw, keys []string) bool {
	for _, key := range keys {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}
