package tracking

import (
	"math"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// TotalStages is the stage of a completed order
const TotalStages = 7

// Stages outside the progression
const (
	StageClosed  = -1
	StageUnknown = -2
)

// BadgeColor is a presentation token understood by the admin UI
type BadgeColor string

const (
	BadgeSuccess BadgeColor = "success"
	BadgeDanger  BadgeColor = "danger"
	BadgeWarning BadgeColor = "warning"
	BadgeInfo    BadgeColor = "info"
	BadgePrimary BadgeColor = "primary"
	BadgeSlate   BadgeColor = "slate"
)

// UnifiedStatus is the customer-facing view of an order and its shipment
type UnifiedStatus struct {
	Stage           int        `json:"stage"`
	DisplayText     string     `json:"display_text"`
	Badge           BadgeColor `json:"badge"`
	ProgressPercent int        `json:"progress_percent"`
}

// IsClosed reports whether the order left the progression
func (u UnifiedStatus) IsClosed() bool {
	return u.Stage == StageClosed
}

type stage struct {
	index int
	text  string
	badge BadgeColor
}

var orderStages = map[order.Status]stage{
	order.StatusPending:   {0, "Awaiting approval", BadgeWarning},
	order.StatusApproved:  {1, "Approved", BadgeInfo},
	order.StatusDelivered: {TotalStages, "Completed", BadgeSuccess},
	order.StatusRejected:  {StageClosed, "Rejected", BadgeDanger},
	order.StatusRefunded:  {StageClosed, "Refunded", BadgeSlate},
}

var shippingStages = map[shipping.Status]stage{
	shipping.StatusPending:    {2, "Preparing shipment", BadgeInfo},
	shipping.StatusProcessing: {3, "Processing", BadgeInfo},
	shipping.StatusShipped:    {4, "Shipped", BadgePrimary},
	shipping.StatusInTransit:  {5, "In transit", BadgePrimary},
	shipping.StatusDelivered:  {6, "Delivered", BadgeSuccess},
	shipping.StatusReceived:   {TotalStages, "Completed", BadgeSuccess},
}

// side branches keep the order's stage and only restyle it
var sideBranches = map[shipping.Status]stage{
	shipping.StatusCancelled: {0, "Shipment cancelled", BadgeDanger},
	shipping.StatusReturned:  {0, "Returned", BadgeWarning},
}

var unknownStage = stage{StageUnknown, "Unknown", BadgeSlate}

// Reconcile combines the order status with its current shipping log.
// It is pure: the same inputs always give the same result.
func Reconcile(orderStatus order.Status, log *shipping.ShippingLog) UnifiedStatus {
	base, ok := orderStages[orderStatus]
	if !ok {
		return unified(unknownStage)
	}
	// shipments never move an order that is unapproved or closed unfulfilled
	if log == nil || orderStatus == order.StatusPending || orderStatus.IsNegativeTerminal() {
		return unified(base)
	}
	if orderStatus == order.StatusDelivered {
		if s, ok := shippingStages[log.Status]; ok && s.index > base.index {
			return unified(s)
		}
		return unified(base)
	}

	if s, ok := shippingStages[log.Status]; ok {
		return unified(s)
	}
	if side, ok := sideBranches[log.Status]; ok {
		side.index = base.index
		return unified(side)
	}
	return unified(stage{base.index, unknownStage.text, unknownStage.badge})
}

// ReconcileKey identifies the inputs of Reconcile, for caching
func ReconcileKey(orderStatus order.Status, log *shipping.ShippingLog) string {
	if log == nil {
		return string(orderStatus) + "|none"
	}
	return string(orderStatus) + "|" + string(log.Status)
}

// Progress converts a stage to a percentage clamped to [0,100]
func Progress(stageIndex int) int {
	p := int(math.Round(float64(stageIndex) / TotalStages * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func unified(s stage) UnifiedStatus {
	return UnifiedStatus{
		Stage:           s.index,
		DisplayText:     s.text,
		Badge:           s.badge,
		ProgressPercent: Progress(s.index),
	}
}
