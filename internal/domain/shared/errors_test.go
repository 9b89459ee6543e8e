package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError(CodeNotFound, "Order abc not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Order abc not found", err.Error())
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load order: %w", NewDomainError(CodeSessionExpired, "expired"))

	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, CodeSessionExpired, CodeOf(err))
}

func TestWrapDomainError_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapDomainError(CodeUpstreamUnavailable, "Order service is unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestCodeOf_NonDomainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestResult(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.IsOk())
	assert.Equal(t, 42, ok.Value())
	require.NoError(t, ok.Err())

	failed := Fail[int](ErrNotFound)
	assert.False(t, failed.IsOk())
	assert.Equal(t, 0, failed.Value())
	assert.ErrorIs(t, failed.Err(), ErrNotFound)

	v, err := ResultOf("x", nil).Unwrap()
	assert.Equal(t, "x", v)
	assert.NoError(t, err)

	assert.False(t, ResultOf("x", ErrConflict).IsOk())
}

func TestEventRecorder_PullClears(t *testing.T) {
	var r EventRecorder
	ev := NewBaseDomainEvent("OrderApproved", "Order", "o-1")
	r.AddDomainEvent(&ev)

	assert.Len(t, r.GetDomainEvents(), 1)
	pulled := r.PullDomainEvents()
	assert.Len(t, pulled, 1)
	assert.Empty(t, r.GetDomainEvents())
	assert.Equal(t, "o-1", pulled[0].AggregateID())
}
