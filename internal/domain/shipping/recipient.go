package shipping

import (
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// Recipient is the person and address a parcel is delivered to
type Recipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// IsComplete reports whether every field resolved
func (r Recipient) IsComplete() bool {
	return r.Name != "" && r.Phone != "" && r.Address != ""
}

// fill copies fields of other into the empty fields of r
func (r Recipient) fill(other Recipient) Recipient {
	if r.Name == "" {
		r.Name = other.Name
	}
	if r.Phone == "" {
		r.Phone = other.Phone
	}
	if r.Address == "" {
		r.Address = other.Address
	}
	return r
}

// RecipientResolver reads recipient fields from one source of a raw log
type RecipientResolver struct {
	Source  string
	Resolve func(raw shared.Raw) Recipient
}

// RecipientResolvers is evaluated in order, per field; the first non-empty
// value wins. Staff search and display rely on this precedence.
var RecipientResolvers = []RecipientResolver{
	{Source: "log", Resolve: fromLogFields},
	{Source: "customer", Resolve: fromEmbeddedCustomer("customer")},
	{Source: "customerInfo", Resolve: fromEmbeddedCustomer("customerInfo")},
	{Source: "order", Resolve: fromOrderContact},
}

// ResolveRecipient resolves name, phone and address of a raw log
func ResolveRecipient(raw shared.Raw) Recipient {
	var r Recipient
	for _, resolver := range RecipientResolvers {
		r = r.fill(resolver.Resolve(raw))
		if r.IsComplete() {
			break
		}
	}
	return r
}

func fromLogFields(raw shared.Raw) Recipient {
	return Recipient{
		Name:    shared.FirstString(raw, "recipientName"),
		Phone:   shared.FirstString(raw, "recipientPhone"),
		Address: shared.FirstString(raw, "shippingAddress", "recipientAddress"),
	}
}

func fromEmbeddedCustomer(key string) func(shared.Raw) Recipient {
	return func(raw shared.Raw) Recipient {
		customer, ok := shared.Object(raw, key)
		if !ok {
			return Recipient{}
		}
		return Recipient{
			Name:    shared.FirstString(customer, "name", "fullName"),
			Phone:   shared.FirstString(customer, "phone", "phoneNumber"),
			Address: shared.FirstString(customer, "address", "shippingAddress"),
		}
	}
}

// fromOrderContact reads the contact fields of an embedded order, which the
// upstream may place under "order" or populate into "orderId"
func fromOrderContact(raw shared.Raw) Recipient {
	var r Recipient
	for _, key := range []string{"order", "orderId"} {
		embedded, ok := shared.Object(raw, key)
		if !ok {
			continue
		}
		r = r.fill(Recipient{
			Name:    shared.FirstString(embedded, "contactName"),
			Phone:   shared.FirstString(embedded, "contactPhone"),
			Address: shared.FirstString(embedded, "contactAddress"),
		})
	}
	return r
}
