package fulfillment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

const tracerName = "fulfillment"

// Orchestrator runs order status transitions against the upstream: local
// validation, the primary status write, and the shipping log follow-up
// for approvals.
type Orchestrator struct {
	orders         order.Gateway
	shipping       shipping.Gateway
	store          *StateStore
	guard          InFlightGuard
	cache          StatusCache
	eventPublisher shared.EventPublisher
	journal        order.TransitionJournal
	metrics        Metrics
	tracer         trace.Tracer
	logger         *zap.Logger

	autoProvision  bool
	defaultCarrier string
	now            func() time.Time
}

// OrchestratorOption is a functional option for configuring the Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithEventPublisher sets the publisher for committed domain events
func WithEventPublisher(p shared.EventPublisher) OrchestratorOption {
	return func(o *Orchestrator) { o.eventPublisher = p }
}

// WithJournal sets the transition journal
func WithJournal(j order.TransitionJournal) OrchestratorOption {
	return func(o *Orchestrator) { o.journal = j }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithShippingProvisioning controls whether approvals create a shipping log
func WithShippingProvisioning(enabled bool, defaultCarrier string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.autoProvision = enabled
		o.defaultCarrier = defaultCarrier
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(
	orders order.Gateway,
	shippingGateway shipping.Gateway,
	store *StateStore,
	guard InFlightGuard,
	cache StatusCache,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		orders:        orders,
		shipping:      shippingGateway,
		store:         store,
		guard:         guard,
		cache:         cache,
		metrics:       noopMetrics{},
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
		autoProvision: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ChangeStatus moves an order to the requested status.
// The returned outcome is never nil; err is set when the status did not
// change.
func (o *Orchestrator) ChangeStatus(ctx context.Context, orderID string, requested order.Status, tc TransitionContext) (*TransitionOutcome, error) {
	started := o.now()
	orderID = strings.TrimSpace(orderID)
	out := &TransitionOutcome{OrderID: orderID, To: requested}

	ctx, span := o.tracer.Start(ctx, "fulfillment.ChangeStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.requested_status", string(requested)),
	))
	defer span.End()

	finish := func(err error, local bool) (*TransitionOutcome, error) {
		out.Err = err
		out.Kind = classify(err, local, out.Warnings)
		out.Elapsed = o.now().Sub(started)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, shared.CodeOf(err))
		}
		span.SetAttributes(attribute.String("fulfillment.outcome", string(out.Kind)))
		o.afterTransition(ctx, out, tc)
		return out, err
	}

	if orderID == "" {
		return finish(shared.NewDomainError(shared.CodeValidation, "Order id is required"), true)
	}
	if !requested.IsValid() {
		return finish(shared.NewDomainError(shared.CodeValidation, "Unknown order status "+string(requested)), true)
	}

	token, acquired, err := o.guard.Acquire(ctx, orderID)
	if err != nil {
		o.logger.Warn("in-flight guard unavailable", zap.String("order_id", orderID), zap.Error(err))
		return finish(shared.WrapDomainError(shared.CodeUpstreamUnavailable, "Could not lock the order, try again", err), true)
	}
	if !acquired {
		return finish(shared.NewDomainError(shared.CodeTransitionInProgress, "Another status change for this order is in progress"), true)
	}
	defer func() {
		if err := o.guard.Release(context.WithoutCancel(ctx), orderID, token); err != nil {
			o.logger.Warn("failed to release in-flight guard", zap.String("order_id", orderID), zap.Error(err))
		}
	}()

	// a sent request is never abandoned because the staff client went away
	upstreamCtx := context.WithoutCancel(ctx)

	state, err := o.load(upstreamCtx, orderID)
	if err != nil {
		return finish(err, false)
	}
	current := state.Order
	out.From = current.Status
	out.Order = current

	if err := order.CheckTransition(current.Status, requested, tc.Reason); err != nil {
		return finish(err, true)
	}
	if current.Status == requested {
		out.Kind = OutcomeUnchanged
		out.Unified = tracking.Reconcile(current.Status, state.History.Current())
		out.Elapsed = o.now().Sub(started)
		o.afterTransition(ctx, out, tc)
		return out, nil
	}

	projected := current.Clone()
	if err := projected.Transition(requested, tc.Reason); err != nil {
		return finish(err, true)
	}

	primary := o.writeStatus(upstreamCtx, orderID, requested, tc)
	if !primary.IsOk() {
		if staleView(primary.Err()) {
			o.evict(upstreamCtx, orderID)
		}
		return finish(primary.Err(), false)
	}
	committed := primary.Value()
	if committed == nil || committed.Status != requested {
		// the upstream acknowledged without echoing the entity
		committed = projected
	}
	out.Order = committed
	events := projected.PullDomainEvents()

	history := state.History
	if requested == order.StatusApproved && o.autoProvision {
		secondary := o.provisionShipping(upstreamCtx, committed)
		if secondary.IsOk() {
			out.ShippingLog = secondary.Value()
			history = history.Upsert(out.ShippingLog)
			events = append(events, out.ShippingLog.PullDomainEvents()...)
		} else {
			o.metrics.RecordSecondaryFailure(ctx, string(requested))
			out.Warnings = append(out.Warnings, shared.WrapDomainError(shared.CodeSecondaryEffect,
				"Order approved but the shipping log could not be created; create it manually", secondary.Err()))
			o.logger.Warn("shipping log provisioning failed after approval",
				zap.String("order_id", orderID), zap.Error(secondary.Err()))
		}
	}

	o.store.Put(orderID, OrderState{Order: committed, History: history})
	out.Unified = o.refreshUnified(upstreamCtx, committed.Status, orderID, history)
	o.publish(upstreamCtx, events)

	return finish(nil, false)
}

// load returns the known state of an order, fetching the order on a miss
func (o *Orchestrator) load(ctx context.Context, orderID string) (OrderState, error) {
	if st, ok := o.store.Get(orderID); ok && st.Order != nil {
		return st, nil
	}
	ord, err := o.orders.GetOrder(ctx, orderID)
	if err != nil {
		return OrderState{}, err
	}
	if ord == nil {
		return OrderState{}, shared.NewDomainError(shared.CodeNotFound, "Order not found")
	}
	o.store.PutOrder(ord)
	st, _ := o.store.Get(orderID)
	return st, nil
}

// staleView reports whether a rejected write means the upstream order no
// longer matches what is held locally
func staleView(err error) bool {
	return errors.Is(err, shared.ErrConflict) ||
		errors.Is(err, shared.ErrNotFound) ||
		errors.Is(err, shared.ErrPreconditionFailed)
}

// evict forgets the local state and cached unified status of an order
func (o *Orchestrator) evict(ctx context.Context, orderID string) {
	o.store.Forget(orderID)
	if err := o.cache.Invalidate(ctx, orderID); err != nil {
		o.logger.Warn("failed to invalidate unified status", zap.String("order_id", orderID), zap.Error(err))
	}
	o.logger.Info("dropped stale order state", zap.String("order_id", orderID))
}

// writeStatus performs the primary write through the endpoint matching
// the requested status
func (o *Orchestrator) writeStatus(ctx context.Context, orderID string, requested order.Status, tc TransitionContext) shared.Result[*order.Order] {
	ctx, span := o.tracer.Start(ctx, "fulfillment.writeStatus")
	defer span.End()

	switch requested {
	case order.StatusRejected:
		return shared.ResultOf(o.orders.Reject(ctx, orderID, strings.TrimSpace(tc.Reason), tc.Note))
	case order.StatusRefunded:
		ord, err := o.orders.Refund(ctx, orderID, strings.TrimSpace(tc.Reason), tc.Note)
		if errors.Is(err, shared.ErrConflict) {
			err = shared.WrapDomainError(shared.CodePreconditionFailed, "Order is no longer rejected and cannot be refunded", err)
		}
		return shared.ResultOf(ord, err)
	default:
		return shared.ResultOf(o.orders.UpdateStatus(ctx, orderID, requested))
	}
}

// provisionShipping creates the shipping log of a freshly approved order
func (o *Orchestrator) provisionShipping(ctx context.Context, approved *order.Order) shared.Result[*shipping.ShippingLog] {
	ctx, span := o.tracer.Start(ctx, "fulfillment.provisionShipping")
	defer span.End()

	log, err := shipping.NewForApprovedOrder(approved.Snapshot(), o.defaultCarrier)
	if err != nil {
		return shared.Fail[*shipping.ShippingLog](err)
	}
	created, err := o.shipping.CreateLog(ctx, log)
	if err != nil {
		return shared.Fail[*shipping.ShippingLog](err)
	}
	if created == nil {
		created = log
	} else {
		if created.Order == nil {
			created.Order = log.Order
		}
		for _, e := range log.PullDomainEvents() {
			created.AddDomainEvent(e)
		}
	}
	return shared.Ok(created)
}

// refreshUnified invalidates and recomputes the cached unified status
func (o *Orchestrator) refreshUnified(ctx context.Context, status order.Status, orderID string, history shipping.History) tracking.UnifiedStatus {
	current := history.Current()
	unified := tracking.Reconcile(status, current)
	if err := o.cache.Invalidate(ctx, orderID); err != nil {
		o.logger.Warn("failed to invalidate unified status", zap.String("order_id", orderID), zap.Error(err))
		return unified
	}
	entry := CachedStatus{Key: tracking.ReconcileKey(status, current), Status: unified}
	if err := o.cache.Set(ctx, orderID, entry); err != nil {
		o.logger.Warn("failed to cache unified status", zap.String("order_id", orderID), zap.Error(err))
	}
	return unified
}

func (o *Orchestrator) publish(ctx context.Context, events []shared.DomainEvent) {
	if o.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := o.eventPublisher.Publish(ctx, events...); err != nil {
		o.logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

// afterTransition records metrics, the journal line and the log entry
func (o *Orchestrator) afterTransition(ctx context.Context, out *TransitionOutcome, tc TransitionContext) {
	o.metrics.RecordTransition(ctx, string(out.From), string(out.To), string(out.Kind), out.Elapsed)

	fields := []zap.Field{
		zap.String("order_id", out.OrderID),
		zap.String("from", string(out.From)),
		zap.String("to", string(out.To)),
		zap.String("outcome", string(out.Kind)),
		zap.String("actor", tc.Actor),
		zap.Duration("elapsed", out.Elapsed),
	}
	switch out.Kind {
	case OutcomeFailed:
		o.logger.Error("order transition failed", append(fields, zap.Error(out.Err))...)
	case OutcomeRejectedLocally:
		o.logger.Info("order transition rejected", append(fields, zap.String("code", shared.CodeOf(out.Err)))...)
	default:
		o.logger.Info("order transition committed", append(fields, zap.Strings("warnings", out.WarningMessages()))...)
	}

	// only attempts that reached the upstream are journaled
	if o.journal == nil || out.Kind == OutcomeRejectedLocally || out.Kind == OutcomeUnchanged {
		return
	}
	rec := &order.TransitionRecord{
		OrderID:    out.OrderID,
		FromStatus: out.From,
		ToStatus:   out.To,
		Outcome:    string(out.Kind),
		ErrorCode:  shared.CodeOf(out.Err),
		Reason:     strings.TrimSpace(tc.Reason),
		Actor:      tc.Actor,
		RequestID:  tc.RequestID,
		DurationMs: out.Elapsed.Milliseconds(),
		CreatedAt:  o.now(),
	}
	if msgs := out.WarningMessages(); len(msgs) > 0 {
		rec.Warning = strings.Join(msgs, "; ")
	}
	if out.ShippingLog != nil {
		rec.ShippingLog = out.ShippingLog.ID
	}
	if err := o.journal.Record(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("failed to journal transition", zap.String("order_id", out.OrderID), zap.Error(err))
	}
}
