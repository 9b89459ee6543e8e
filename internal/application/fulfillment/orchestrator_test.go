package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

type orchestratorFixture struct {
	orders   *MockOrderGateway
	shipping *MockShippingGateway
	store    *StateStore
	guard    *fakeGuard
	cache    *fakeCache
	metrics  *fakeMetrics
	journal  *MockJournal
	pub      *MockEventPublisher
	orch     *Orchestrator
	events   []shared.DomainEvent
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		orders:   new(MockOrderGateway),
		shipping: new(MockShippingGateway),
		store:    NewStateStore(),
		guard:    newFakeGuard(),
		cache:    newFakeCache(),
		metrics:  &fakeMetrics{},
		journal:  new(MockJournal),
		pub:      new(MockEventPublisher),
	}
	f.pub.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		f.events = append(f.events, args.Get(1).([]shared.DomainEvent)...)
	}).Return(nil).Maybe()
	f.journal.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.orch = NewOrchestrator(f.orders, f.shipping, f.store, f.guard, f.cache, zap.NewNop(),
		WithEventPublisher(f.pub),
		WithJournal(f.journal),
		WithMetrics(f.metrics),
		WithShippingProvisioning(true, "GHN"),
	)
	return f
}

func (f *orchestratorFixture) seed(o *order.Order) {
	f.store.Put(o.ID, OrderState{Order: o})
}

func (f *orchestratorFixture) assertNoWrites(t *testing.T) {
	t.Helper()
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.shipping.AssertNotCalled(t, "CreateLog", mock.Anything, mock.Anything)
}

func (f *orchestratorFixture) eventTypes() []string {
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.EventType())
	}
	return types
}

// ==================== Local Rejection Tests ====================

func TestChangeStatus_TableDisallowedPairsNeverReachUpstream(t *testing.T) {
	for _, current := range order.AllStatuses {
		for _, requested := range order.AllStatuses {
			reason := ""
			if requested == order.StatusRejected {
				reason = "Damaged packaging"
			}
			if order.CheckTransition(current, requested, reason) == nil {
				continue
			}

			t.Run(string(current)+"->"+string(requested), func(t *testing.T) {
				f := newOrchestratorFixture(t)
				f.seed(newTestOrder("o-1", current))

				out, err := f.orch.ChangeStatus(context.Background(), "o-1", requested, TransitionContext{Reason: reason})

				require.Error(t, err)
				assert.Equal(t, OutcomeRejectedLocally, out.Kind)
				code := shared.CodeOf(err)
				assert.Contains(t, []string{shared.CodeInvalidTransition, shared.CodePreconditionFailed}, code)
				f.orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
				f.assertNoWrites(t)

				st, _ := f.store.Get("o-1")
				assert.Equal(t, current, st.Order.Status)
				assert.False(t, f.guard.isHeld("o-1"))
			})
		}
	}
}

func TestChangeStatus_RejectWithoutReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		f := newOrchestratorFixture(t)
		f.seed(newTestOrder("o-1", order.StatusPending))

		out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRejected, TransitionContext{Reason: reason})

		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, OutcomeRejectedLocally, out.Kind)
		f.assertNoWrites(t)
		f.journal.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	}
}

func TestChangeStatus_RefundRequiresRejected(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusApproved))

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRefunded, TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	assert.Equal(t, OutcomeRejectedLocally, out.Kind)
	f.assertNoWrites(t)
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	f := newOrchestratorFixture(t)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.Status("shipped"), TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, OutcomeRejectedLocally, out.Kind)
	f.orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestChangeStatus_InFlightGuard(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusPending))
	_, _, _ = f.guard.Acquire(context.Background(), "o-1")

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrTransitionInProgress)
	assert.Equal(t, OutcomeRejectedLocally, out.Kind)
	f.assertNoWrites(t)
	assert.True(t, f.guard.isHeld("o-1"), "the holder keeps the guard")
}

func TestChangeStatus_GuardIsPerOrder(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-2", order.StatusPending))
	_, _, _ = f.guard.Acquire(context.Background(), "o-1")

	rejected := withStatus(newTestOrder("o-2", order.StatusPending), order.StatusRejected)
	f.orders.On("Reject", mock.Anything, "o-2", "Out of stock", "").Return(rejected, nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-2", order.StatusRejected, TransitionContext{Reason: "Out of stock"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
}

func TestChangeStatus_ReleaseKeepsAnotherHoldersGuard(t *testing.T) {
	f := newOrchestratorFixture(t)
	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)

	// the guard expired mid-write and another request took it over
	f.orders.On("Reject", mock.Anything, "o-1", "Out of stock", "").Run(func(mock.Arguments) {
		f.guard.mu.Lock()
		f.guard.held["o-1"] = "other-holder"
		f.guard.mu.Unlock()
	}).Return(withStatus(pending, order.StatusRejected), nil)

	_, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRejected, TransitionContext{Reason: "Out of stock"})

	require.NoError(t, err)
	assert.True(t, f.guard.isHeld("o-1"), "the newer holder keeps the guard")
}

// ==================== Approve Tests ====================

func TestChangeStatus_ApproveProvisionsShipping(t *testing.T) {
	f := newOrchestratorFixture(t)
	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)

	approved := withStatus(pending, order.StatusApproved)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).Return(approved, nil).Once()
	f.shipping.On("CreateLog", mock.Anything, mock.MatchedBy(func(l *shipping.ShippingLog) bool {
		return l.OrderID() == "o-1" &&
			l.Status == shipping.StatusPending &&
			l.Carrier == "GHN" &&
			l.Recipient.Name == "Nguyen Van A" &&
			l.Recipient.Address == "12 Le Loi, District 1"
	})).Return(&shipping.ShippingLog{
		ID:     "log-1",
		Order:  shipping.OrderRefID("o-1"),
		Status: shipping.StatusPending,
	}, nil).Once()

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{Actor: "staff-1"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	assert.Equal(t, order.StatusPending, out.From)
	assert.Equal(t, order.StatusApproved, out.Order.Status)
	require.NotNil(t, out.ShippingLog)
	assert.Equal(t, "log-1", out.ShippingLog.ID)
	assert.Equal(t, 2, out.Unified.Stage)
	assert.Equal(t, "Preparing shipment", out.Unified.DisplayText)

	st, ok := f.store.Get("o-1")
	require.True(t, ok)
	assert.Equal(t, order.StatusApproved, st.Order.Status)
	require.Len(t, st.History, 1)
	assert.Equal(t, "log-1", st.History.Current().ID)

	cached, ok, _ := f.cache.Get(context.Background(), "o-1")
	require.True(t, ok)
	assert.Equal(t, "approved|Pending", cached.Key)
	assert.Contains(t, f.cache.invalidated, "o-1")

	assert.Equal(t, []string{order.EventTypeOrderApproved, shipping.EventTypeShippingLogCreated}, f.eventTypes())
	assert.Equal(t, []string{string(OutcomeCommitted)}, f.metrics.outcomes)
	f.journal.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(r *order.TransitionRecord) bool {
		return r.OrderID == "o-1" && r.Outcome == string(OutcomeCommitted) && r.ShippingLog == "log-1" && r.Actor == "staff-1"
	}))
	f.orders.AssertExpectations(t)
	f.shipping.AssertExpectations(t)
	assert.False(t, f.guard.isHeld("o-1"))
}

func TestChangeStatus_ApproveWithShippingFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)

	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).Return(withStatus(pending, order.StatusApproved), nil)
	f.shipping.On("CreateLog", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeUpstreamUnavailable, "Internal Server Error"))

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommittedWithWarning, out.Kind)
	assert.True(t, out.Kind.IsCommitted())
	require.Len(t, out.Warnings, 1)
	assert.ErrorIs(t, out.Warnings[0], shared.ErrSecondaryEffect)
	assert.ErrorIs(t, out.Warnings[0], shared.ErrUpstreamUnavailable)
	assert.Nil(t, out.ShippingLog)

	st, _ := f.store.Get("o-1")
	assert.Equal(t, order.StatusApproved, st.Order.Status, "no rollback of the primary write")
	assert.Empty(t, st.History)
	assert.Equal(t, 1, out.Unified.Stage)
	assert.Equal(t, 1, f.metrics.secondaries)
	assert.Equal(t, []string{order.EventTypeOrderApproved}, f.eventTypes())
}

func TestChangeStatus_ApproveWithoutProvisioning(t *testing.T) {
	f := newOrchestratorFixture(t)
	WithShippingProvisioning(false, "")(f.orch)
	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).Return(withStatus(pending, order.StatusApproved), nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	f.shipping.AssertNotCalled(t, "CreateLog", mock.Anything, mock.Anything)
}

// ==================== Primary Failure Tests ====================

func TestChangeStatus_PrimaryFailureLeavesStateUntouched(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusPending))
	f.cache.entries["o-1"] = CachedStatus{Key: "pending|none", Status: tracking.Reconcile(order.StatusPending, nil)}

	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).
		Return(nil, shared.NewDomainError(shared.CodeUpstreamUnavailable, "Upstream unavailable"))

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
	assert.Equal(t, OutcomeFailed, out.Kind)
	f.shipping.AssertNotCalled(t, "CreateLog", mock.Anything, mock.Anything)

	st, _ := f.store.Get("o-1")
	assert.Equal(t, order.StatusPending, st.Order.Status)
	_, ok, _ := f.cache.Get(context.Background(), "o-1")
	assert.True(t, ok, "cache untouched on failure")
	assert.Empty(t, f.events)
	assert.False(t, f.guard.isHeld("o-1"))
	f.journal.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(r *order.TransitionRecord) bool {
		return r.Outcome == string(OutcomeFailed) && r.ErrorCode == shared.CodeUpstreamUnavailable
	}))
}

func TestChangeStatus_RefundConflictBecomesPrecondition(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusRejected))

	f.orders.On("Refund", mock.Anything, "o-1", "Customer request", "").
		Return(nil, shared.NewDomainError(shared.CodeConflict, "Order status changed"))

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRefunded, TransitionContext{Reason: " Customer request "})

	assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	assert.Equal(t, "Order is no longer rejected and cannot be refunded", err.(*shared.DomainError).Message)
	assert.Equal(t, OutcomeFailed, out.Kind)
	_, ok := f.store.Get("o-1")
	assert.False(t, ok, "stale state is dropped")
}

func TestChangeStatus_ConflictEvictsStaleState(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusPending))
	f.cache.entries["o-1"] = CachedStatus{Key: "pending|none", Status: tracking.Reconcile(order.StatusPending, nil)}

	// another operator rejected the order upstream
	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).
		Return(nil, shared.NewDomainError(shared.CodeConflict, "Order status changed")).Once()

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, OutcomeFailed, out.Kind)
	_, ok := f.store.Get("o-1")
	assert.False(t, ok)
	_, cached, _ := f.cache.Get(context.Background(), "o-1")
	assert.False(t, cached)
	assert.Contains(t, f.cache.invalidated, "o-1")

	rejected := newTestOrder("o-1", order.StatusRejected)
	f.orders.On("GetOrder", mock.Anything, "o-1").Return(rejected, nil).Once()
	f.orders.On("Refund", mock.Anything, "o-1", "", "").Return(withStatus(rejected, order.StatusRefunded), nil).Once()

	out, err = f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRefunded, TransitionContext{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	assert.Equal(t, order.StatusRejected, out.From)
	st, ok := f.store.Get("o-1")
	require.True(t, ok)
	assert.Equal(t, order.StatusRefunded, st.Order.Status)
	f.orders.AssertExpectations(t)
}

func TestChangeStatus_RefundSucceeds(t *testing.T) {
	f := newOrchestratorFixture(t)
	rejected := newTestOrder("o-1", order.StatusRejected)
	f.seed(rejected)

	f.orders.On("Refund", mock.Anything, "o-1", "", "refund via bank").Return(withStatus(rejected, order.StatusRefunded), nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRefunded, TransitionContext{Note: "refund via bank"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	assert.Equal(t, tracking.StageClosed, out.Unified.Stage)
	assert.Equal(t, []string{order.EventTypeOrderRefunded}, f.eventTypes())
}

// ==================== Upstream Contract Tests ====================

func TestChangeStatus_SentRequestIsNotCancelled(t *testing.T) {
	f := newOrchestratorFixture(t)
	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)

	ctx, cancel := context.WithCancel(context.Background())
	f.orders.On("Reject", mock.MatchedBy(func(c context.Context) bool {
		cancel()
		return c.Err() == nil
	}), "o-1", "Out of stock", "").Return(withStatus(pending, order.StatusRejected), nil)

	out, err := f.orch.ChangeStatus(ctx, "o-1", order.StatusRejected, TransitionContext{Reason: "Out of stock"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	f.orders.AssertExpectations(t)
}

func TestChangeStatus_LoadsUnknownOrder(t *testing.T) {
	f := newOrchestratorFixture(t)
	pending := newTestOrder("o-1", order.StatusPending)
	f.orders.On("GetOrder", mock.Anything, "o-1").Return(pending, nil).Once()
	f.orders.On("Reject", mock.Anything, "o-1", "Invalid address", "call customer").Return(withStatus(pending, order.StatusRejected), nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRejected,
		TransitionContext{Reason: "Invalid address", Note: "call customer"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	f.orders.AssertExpectations(t)
}

func TestChangeStatus_LoadFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.orders.On("GetOrder", mock.Anything, "o-404").Return(nil, shared.NewDomainError(shared.CodeNotFound, "Order not found"))

	out, err := f.orch.ChangeStatus(context.Background(), "o-404", order.StatusApproved, TransitionContext{})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, OutcomeFailed, out.Kind)
	f.assertNoWrites(t)
}

func TestChangeStatus_UpstreamWithoutEntityUsesProjection(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusPending))
	f.orders.On("Reject", mock.Anything, "o-1", "Out of stock", "").Return(nil, nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRejected, TransitionContext{Reason: "Out of stock"})

	require.NoError(t, err)
	assert.Equal(t, order.StatusRejected, out.Order.Status)
	assert.Equal(t, "Out of stock", out.Order.RejectionReason)
}

func TestChangeStatus_PartialEchoUsesProjectionAndProvisions(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusPending))
	// the gateway hands back nil when the echoed entity cannot be read
	f.orders.On("UpdateStatus", mock.Anything, "o-1", order.StatusApproved).Return(nil, nil).Once()
	f.shipping.On("CreateLog", mock.Anything, mock.MatchedBy(func(l *shipping.ShippingLog) bool {
		return l.OrderID() == "o-1" && l.Recipient.Name == "Nguyen Van A"
	})).Return(nil, nil).Once()

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	assert.Equal(t, order.StatusApproved, out.Order.Status)
	require.NotNil(t, out.ShippingLog)
	st, _ := f.store.Get("o-1")
	assert.Equal(t, order.StatusApproved, st.Order.Status)
	f.shipping.AssertExpectations(t)
}

func TestChangeStatus_SameStatusIsNoop(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seed(newTestOrder("o-1", order.StatusApproved))

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusApproved, TransitionContext{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, out.Kind)
	assert.True(t, out.Kind.IsCommitted())
	f.assertNoWrites(t)
	f.journal.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestChangeStatus_PublishFailureDoesNotFailTransition(t *testing.T) {
	f := newOrchestratorFixture(t)
	pub := new(MockEventPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus stopped"))
	WithEventPublisher(pub)(f.orch)

	pending := newTestOrder("o-1", order.StatusPending)
	f.seed(pending)
	f.orders.On("Reject", mock.Anything, "o-1", "Out of stock", "").Return(withStatus(pending, order.StatusRejected), nil)

	out, err := f.orch.ChangeStatus(context.Background(), "o-1", order.StatusRejected, TransitionContext{Reason: "Out of stock"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	pub.AssertExpectations(t)
}

// ==================== classify Tests ====================

func TestClassify(t *testing.T) {
	warn := []*shared.DomainError{shared.NewDomainError(shared.CodeSecondaryEffect, "x")}
	boom := errors.New("boom")

	assert.Equal(t, OutcomeCommitted, classify(nil, false, nil))
	assert.Equal(t, OutcomeCommittedWithWarning, classify(nil, false, warn))
	assert.Equal(t, OutcomeRejectedLocally, classify(boom, true, nil))
	assert.Equal(t, OutcomeFailed, classify(boom, false, warn))
	assert.False(t, OutcomeFailed.IsCommitted())
}
