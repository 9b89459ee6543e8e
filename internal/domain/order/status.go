package order

import (
	"fmt"
	"strings"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
)

// Status represents the status of a storefront order
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusRefunded  Status = "refunded"
	StatusDelivered Status = "delivered"
)

// AllStatuses lists every order status in lifecycle order
var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusRefunded,
	StatusDelivered,
}

// transitions is the allowed-next-state table. Every status may be written
// to itself; refunds are not part of the table and go through CheckRefund.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusApproved, StatusRejected},
	StatusApproved:  {StatusApproved, StatusRejected},
	StatusRejected:  {StatusRejected},
	StatusRefunded:  {StatusRefunded},
	StatusDelivered: {StatusDelivered},
}

// ParseStatus converts an upstream or request value into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown order status %q", s))
	}
	return status, nil
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// AllowedNext returns the statuses reachable from s, including s itself
func (s Status) AllowedNext() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no other status is reachable from s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusRefunded, StatusDelivered:
		return true
	}
	return false
}

// IsNegativeTerminal reports whether the order ended without fulfillment
func (s Status) IsNegativeTerminal() bool {
	return s == StatusRejected || s == StatusRefunded
}

// CheckTransition validates a requested status write against the current
// status. A rejection must carry a non-blank reason and no other write may
// carry one.
func CheckTransition(current, requested Status, reason string) error {
	if !requested.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown order status %q", requested))
	}
	hasReason := strings.TrimSpace(reason) != ""
	if requested == StatusRejected && !hasReason {
		return shared.NewDomainError(shared.CodeValidation, "A rejection reason is required to reject an order")
	}
	if requested == StatusRefunded {
		return CheckRefund(current)
	}
	if requested != StatusRejected && hasReason {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("A reason cannot be supplied when setting status to %s", requested))
	}
	if !current.CanTransitionTo(requested) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot change order status from %s to %s", current, requested))
	}
	return nil
}

// CheckRefund validates that an order in the given status can be refunded
func CheckRefund(current Status) error {
	if current == StatusRefunded {
		return nil
	}
	if current != StatusRejected {
		return shared.NewDomainError(shared.CodePreconditionFailed,
			fmt.Sprintf("Only rejected orders can be refunded, order is %s", current))
	}
	return nil
}
