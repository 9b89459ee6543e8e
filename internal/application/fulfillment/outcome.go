package fulfillment

import (
	"time"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

// OutcomeKind classifies the result of a transition attempt
type OutcomeKind string

const (
	// OutcomeCommitted means the upstream accepted every write
	OutcomeCommitted OutcomeKind = "committed"
	// OutcomeCommittedWithWarning means the status changed but a follow-up
	// effect failed
	OutcomeCommittedWithWarning OutcomeKind = "committed_with_warning"
	// OutcomeUnchanged means the order already had the requested status
	OutcomeUnchanged OutcomeKind = "unchanged"
	// OutcomeRejectedLocally means the request never reached the upstream
	OutcomeRejectedLocally OutcomeKind = "rejected_locally"
	// OutcomeFailed means the upstream refused or could not be reached
	OutcomeFailed OutcomeKind = "failed"
)

// IsCommitted reports whether the order status is the requested one
func (k OutcomeKind) IsCommitted() bool {
	return k == OutcomeCommitted || k == OutcomeCommittedWithWarning || k == OutcomeUnchanged
}

// TransitionContext carries the operator input of a transition
type TransitionContext struct {
	Reason    string
	Note      string
	Actor     string
	RequestID string
}

// TransitionOutcome is the full result of ChangeStatus
type TransitionOutcome struct {
	Kind        OutcomeKind
	OrderID     string
	From        order.Status
	To          order.Status
	Order       *order.Order
	ShippingLog *shipping.ShippingLog
	Unified     tracking.UnifiedStatus
	Warnings    []*shared.DomainError
	Err         error
	Elapsed     time.Duration
}

// HasWarnings reports whether the outcome carries warnings
func (o *TransitionOutcome) HasWarnings() bool {
	return len(o.Warnings) > 0
}

// WarningMessages returns the warning messages
func (o *TransitionOutcome) WarningMessages() []string {
	msgs := make([]string, 0, len(o.Warnings))
	for _, w := range o.Warnings {
		msgs = append(msgs, w.Message)
	}
	return msgs
}

// classify decides the outcome kind from the primary error and warnings
func classify(primaryErr error, local bool, warnings []*shared.DomainError) OutcomeKind {
	switch {
	case primaryErr != nil && local:
		return OutcomeRejectedLocally
	case primaryErr != nil:
		return OutcomeFailed
	case len(warnings) > 0:
		return OutcomeCommittedWithWarning
	default:
		return OutcomeCommitted
	}
}
