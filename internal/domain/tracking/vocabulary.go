package tracking

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// StatusDescriptor describes one status value for admin dropdowns and badges
type StatusDescriptor struct {
	Value    string     `json:"value"`
	Label    string     `json:"label"`
	Badge    BadgeColor `json:"badge"`
	Stage    int        `json:"stage"`
	Terminal bool       `json:"terminal"`
	Next     []string   `json:"next,omitempty"`
}

// Vocabulary is the canonical status vocabulary
type Vocabulary struct {
	OrderStatuses    []StatusDescriptor `json:"order_statuses"`
	ShippingStatuses []StatusDescriptor `json:"shipping_statuses"`
}

// Label returns the title-cased display label of a raw status value
func Label(value string) string {
	return cases.Title(language.English).String(value)
}

// BuildVocabulary lists every order and shipping status with its badge
func BuildVocabulary() Vocabulary {
	v := Vocabulary{
		OrderStatuses:    make([]StatusDescriptor, 0, len(order.AllStatuses)),
		ShippingStatuses: make([]StatusDescriptor, 0, len(shipping.AllStatuses)),
	}

	for _, s := range order.AllStatuses {
		st := orderStages[s]
		next := make([]string, 0)
		for _, n := range s.AllowedNext() {
			if n != s {
				next = append(next, n.String())
			}
		}
		if s == order.StatusRejected {
			next = append(next, order.StatusRefunded.String())
		}
		v.OrderStatuses = append(v.OrderStatuses, StatusDescriptor{
			Value:    s.String(),
			Label:    Label(s.String()),
			Badge:    st.badge,
			Stage:    st.index,
			Terminal: s.IsTerminal(),
			Next:     next,
		})
	}

	for _, s := range shipping.AllStatuses {
		st, ok := shippingStages[s]
		if !ok {
			st = sideBranches[s]
			st.index = StageClosed
		}
		v.ShippingStatuses = append(v.ShippingStatuses, StatusDescriptor{
			Value:    s.String(),
			Label:    Label(s.String()),
			Badge:    st.badge,
			Stage:    st.index,
			Terminal: s.IsTerminal(),
		})
	}
	return v
}
