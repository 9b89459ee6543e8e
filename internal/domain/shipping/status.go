package shipping

import (
	"strings"

	"golang.org/x/text/cases"
)

// Status represents the physical fulfillment status of a shipping log
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusInTransit  Status = "In Transit"
	StatusDelivered  Status = "Delivered"
	StatusReceived   Status = "Received"
	StatusCancelled  Status = "Cancelled"
	StatusReturned   Status = "Returned"
	// StatusUnknown is never sent upstream; it stands for any value the
	// engine does not recognise
	StatusUnknown Status = "Unknown"
)

// LinearStatuses is the forward progression of a shipment
var LinearStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusInTransit,
	StatusDelivered,
	StatusReceived,
}

// AllStatuses lists every status staff may set
var AllStatuses = append(append([]Status{}, LinearStatuses...), StatusCancelled, StatusReturned)

var separators = strings.NewReplacer(" ", "", "_", "", "-", "")

// statusIndex maps folded, separator-free spellings to canonical statuses
var statusIndex = func() map[string]Status {
	idx := make(map[string]Status, len(AllStatuses)+1)
	for _, s := range AllStatuses {
		idx[foldKey(string(s))] = s
	}
	idx[foldKey("canceled")] = StatusCancelled
	return idx
}()

// foldKey builds a lookup key. A Caser is stateful, so each call gets its own.
func foldKey(s string) string {
	return separators.Replace(cases.Fold().String(strings.TrimSpace(s)))
}

// ParseStatus resolves a status string case-insensitively. It never fails:
// empty or unrecognised input yields StatusUnknown.
func ParseStatus(s string) Status {
	if status, ok := statusIndex[foldKey(s)]; ok {
		return status
	}
	return StatusUnknown
}

// IsValid reports whether s is a status staff may set
func (s Status) IsValid() bool {
	return s != StatusUnknown && ParseStatus(string(s)) == s
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Position returns the index of s on the linear track, or -1 for side
// branches and unknown values
func (s Status) Position() int {
	for i, linear := range LinearStatuses {
		if linear == s {
			return i
		}
	}
	return -1
}

// IsLinear reports whether s is on the forward progression
func (s Status) IsLinear() bool {
	return s.Position() >= 0
}

// IsSideBranch reports whether s is Cancelled or Returned
func (s Status) IsSideBranch() bool {
	return s == StatusCancelled || s == StatusReturned
}

// IsTerminal reports whether the shipment has reached an end state
func (s Status) IsTerminal() bool {
	return s == StatusReceived || s.IsSideBranch()
}

// IsDeliveredState reports whether the parcel reached the customer
func (s Status) IsDeliveredState() bool {
	return s == StatusDelivered || s == StatusReceived
}

// IsForwardOf reports whether moving from prev to s follows the expected
// progression. Staff may set any value; this is advisory only.
func (s Status) IsForwardOf(prev Status) bool {
	if prev == s {
		return true
	}
	if prev.IsTerminal() {
		return false
	}
	if s.IsSideBranch() {
		return true
	}
	if prev.Position() < 0 {
		return s.IsLinear()
	}
	return s.Position() > prev.Position()
}
