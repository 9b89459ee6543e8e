package order

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// FromRaw builds an Order from the storefront backend's JSON shape.
// Products and customers may arrive populated (objects) or as bare ids.
// An unrecognised status is kept as-is rather than rejected.
func FromRaw(raw shared.Raw) (*Order, error) {
	if raw == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order payload is empty")
	}

	rawStatus := shared.FirstString(raw, "status")
	status, err := ParseStatus(rawStatus)
	if err != nil {
		// kept verbatim so tracking can report it as unknown
		status = Status(strings.ToLower(rawStatus))
	}

	o := &Order{
		ID:              shared.FirstString(raw, "_id", "id"),
		CustomerID:      shared.IDOf(firstPresent(raw, "userId", "user", "customerId", "customer")),
		Status:          status,
		TotalAmount:     decimalOf(firstPresent(raw, "totalAmount", "totalPrice", "total")),
		RejectionReason: shared.FirstString(raw, "rejectionReason"),
		RefundReason:    shared.FirstString(raw, "refundReason"),
		Note:            shared.FirstString(raw, "note", "notes"),
		ContactName:     shared.FirstString(raw, "contactName"),
		ContactPhone:    shared.FirstString(raw, "contactPhone"),
		ContactAddress:  shared.FirstString(raw, "contactAddress", "shippingAddress"),
	}
	if t := shared.Time(raw, "createdAt"); t != nil {
		o.CreatedAt = *t
	}
	if t := shared.Time(raw, "updatedAt"); t != nil {
		o.UpdatedAt = *t
	}

	for _, v := range shared.Slice(raw, "items") {
		itemRaw, ok := shared.AsRaw(v)
		if !ok {
			continue
		}
		o.Items = append(o.Items, itemFromRaw(itemRaw))
	}

	if err := o.validateShape(); err != nil {
		return nil, err
	}
	return o, nil
}

func itemFromRaw(raw shared.Raw) Item {
	item := Item{
		ProductName: shared.FirstString(raw, "productName", "name"),
		Price:       decimalOf(firstPresent(raw, "price", "unitPrice")),
	}
	product := firstPresent(raw, "productId", "product")
	item.ProductID = shared.IDOf(product)
	if item.ProductName == "" {
		if obj, ok := shared.AsRaw(product); ok {
			item.ProductName = shared.FirstString(obj, "productName", "name")
		}
	}
	if q, ok := shared.Int(raw, "quantity"); ok {
		item.Quantity = q
	}
	return item
}

func firstPresent(raw shared.Raw, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func decimalOf(v any) decimal.Decimal {
	s := shared.Scalar(v)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
