package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus_CaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"Pending", StatusPending},
		{"pending", StatusPending},
		{"PROCESSING", StatusProcessing},
		{"shipped", StatusShipped},
		{"In Transit", StatusInTransit},
		{"in transit", StatusInTransit},
		{"IN_TRANSIT", StatusInTransit},
		{"in-transit", StatusInTransit},
		{"intransit", StatusInTransit},
		{" delivered ", StatusDelivered},
		{"received", StatusReceived},
		{"cancelled", StatusCancelled},
		{"Canceled", StatusCancelled},
		{"returned", StatusReturned},
		{"", StatusUnknown},
		{"   ", StatusUnknown},
		{"lost at sea", StatusUnknown},
		{"Unknown", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.input))
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, StatusUnknown.IsValid())
	assert.False(t, Status("in transit").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_Position(t *testing.T) {
	for i, s := range LinearStatuses {
		assert.Equal(t, i, s.Position())
		assert.True(t, s.IsLinear())
	}
	assert.Equal(t, -1, StatusCancelled.Position())
	assert.Equal(t, -1, StatusReturned.Position())
	assert.Equal(t, -1, StatusUnknown.Position())
}

func TestStatus_Classification(t *testing.T) {
	assert.True(t, StatusCancelled.IsSideBranch())
	assert.True(t, StatusReturned.IsSideBranch())
	assert.False(t, StatusShipped.IsSideBranch())

	assert.True(t, StatusReceived.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())

	assert.True(t, StatusDelivered.IsDeliveredState())
	assert.True(t, StatusReceived.IsDeliveredState())
	assert.False(t, StatusInTransit.IsDeliveredState())
}

func TestStatus_IsForwardOf(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusDelivered, true},
		{StatusShipped, StatusShipped, true},
		{StatusInTransit, StatusProcessing, false},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusReturned, true},
		{StatusReceived, StatusReturned, false},
		{StatusCancelled, StatusPending, false},
		{StatusUnknown, StatusShipped, true},
		{StatusUnknown, StatusUnknown, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.to.IsForwardOf(tt.from))
		})
	}
}
