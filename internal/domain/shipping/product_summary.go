package shipping

import (
	"fmt"
	"strings"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// ProductSummary describes the parcel contents: free text or a structured
// breakdown
type ProductSummary interface {
	Display() string
	isProductSummary()
}

// SummaryText is a free-text summary shown verbatim
type SummaryText string

// Display returns the text unchanged
func (s SummaryText) Display() string { return string(s) }

func (SummaryText) isProductSummary() {}

// SummaryItem is one line of a structured summary
type SummaryItem struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
}

// StructuredSummary is a per-item breakdown with totals
type StructuredSummary struct {
	Count         int           `json:"count"`
	TotalQuantity int           `json:"totalQuantity"`
	Items         []SummaryItem `json:"items"`
}

// Display renders "2 products, 3 units: Serum x2, Sunscreen x1"
func (s StructuredSummary) Display() string {
	head := fmt.Sprintf("%d products, %d units", s.Count, s.TotalQuantity)
	if len(s.Items) == 0 {
		return head
	}
	parts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s x%d", name, item.Quantity))
	}
	return head + ": " + strings.Join(parts, ", ")
}

func (StructuredSummary) isProductSummary() {}

// ResolveProductSummary reads productSummary from a raw log. A string is
// kept verbatim; an object uses its items with count and totalQuantity
// falling back to the log's own itemCount and totalQuantity.
func ResolveProductSummary(raw shared.Raw) ProductSummary {
	if raw == nil {
		return SummaryText("")
	}
	switch v := raw["productSummary"].(type) {
	case string:
		return SummaryText(v)
	case map[string]any:
		return structuredFromRaw(v, raw)
	}
	if _, hasCount := shared.Int(raw, "itemCount"); hasCount {
		return structuredFromRaw(nil, raw)
	}
	if _, hasQty := shared.Int(raw, "totalQuantity"); hasQty {
		return structuredFromRaw(nil, raw)
	}
	return SummaryText("")
}

func structuredFromRaw(summary, log shared.Raw) StructuredSummary {
	s := StructuredSummary{Items: make([]SummaryItem, 0)}
	for _, v := range shared.Slice(summary, "items") {
		itemRaw, ok := shared.AsRaw(v)
		if !ok {
			continue
		}
		product := itemRaw["productId"]
		if product == nil {
			product = itemRaw["product"]
		}
		item := SummaryItem{
			ProductID: shared.IDOf(product),
			Name:      shared.FirstString(itemRaw, "name", "productName"),
		}
		if item.Name == "" {
			if obj, ok := shared.AsRaw(product); ok {
				item.Name = shared.FirstString(obj, "productName", "name")
			}
		}
		if q, ok := shared.Int(itemRaw, "quantity"); ok {
			item.Quantity = q
		}
		s.Items = append(s.Items, item)
	}

	if n, ok := shared.Int(summary, "count"); ok {
		s.Count = n
	} else if n, ok := shared.Int(log, "itemCount"); ok {
		s.Count = n
	} else {
		s.Count = len(s.Items)
	}

	if n, ok := shared.Int(summary, "totalQuantity"); ok {
		s.TotalQuantity = n
	} else if n, ok := shared.Int(log, "totalQuantity"); ok {
		s.TotalQuantity = n
	} else {
		for _, item := range s.Items {
			s.TotalQuantity += item.Quantity
		}
	}
	return s
}

// SummaryFromSnapshot builds a structured summary from an order snapshot
func SummaryFromSnapshot(snap order.Snapshot) StructuredSummary {
	items := make([]SummaryItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, SummaryItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
		})
	}
	return StructuredSummary{
		Count:         snap.ItemCount,
		TotalQuantity: snap.TotalQuantity,
		Items:         items,
	}
}
