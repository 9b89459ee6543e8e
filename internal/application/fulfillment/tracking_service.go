package fulfillment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

// TrackingView is an order with its shipments and unified status
type TrackingView struct {
	Order   *order.Order
	Current *shipping.ShippingLog
	History shipping.History
	Unified tracking.UnifiedStatus
	Cached  bool
}

// TrackingService answers "where is this order" queries
type TrackingService struct {
	orders   order.Gateway
	shipping shipping.Gateway
	store    *StateStore
	cache    StatusCache
	journal  order.TransitionJournal
	metrics  Metrics
	logger   *zap.Logger
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(orders order.Gateway, shippingGateway shipping.Gateway, store *StateStore, cache StatusCache, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		orders:   orders,
		shipping: shippingGateway,
		store:    store,
		cache:    cache,
		metrics:  noopMetrics{},
		logger:   logger,
	}
}

// SetJournal sets the transition journal read by Transitions
func (s *TrackingService) SetJournal(j order.TransitionJournal) {
	s.journal = j
}

// SetMetrics sets the metrics recorder
func (s *TrackingService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// Track fetches the order and its shipping history from the upstream and
// reconciles them. The cached unified status is reused when its inputs
// did not change.
func (s *TrackingService) Track(ctx context.Context, orderID string) (*TrackingView, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order id is required")
	}

	ord, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Order not found")
	}
	history, err := s.shipping.LogsByOrder(ctx, orderID)
	if err != nil {
		// the order alone still yields a status
		s.logger.Warn("shipping history unavailable", zap.String("order_id", orderID), zap.Error(err))
		history = nil
	}
	for _, l := range history {
		if l.Order == nil {
			l.Order = shipping.OrderRefID(orderID)
		}
	}

	view := &TrackingView{
		Order:   ord,
		History: history.NewestFirst(),
		Current: history.Current(),
	}
	s.store.Put(orderID, OrderState{Order: ord, History: history})

	key := tracking.ReconcileKey(ord.Status, view.Current)
	if cached, ok := s.lookup(ctx, orderID); ok && cached.Key == key {
		view.Unified = cached.Status
		view.Cached = true
		return view, nil
	}

	view.Unified = tracking.Reconcile(ord.Status, view.Current)
	if err := s.cache.Set(ctx, orderID, CachedStatus{Key: key, Status: view.Unified}); err != nil {
		s.logger.Warn("failed to cache unified status", zap.String("order_id", orderID), zap.Error(err))
	}
	return view, nil
}

// UnifiedStatus returns the unified status of an order, from the cache
// when present
func (s *TrackingService) UnifiedStatus(ctx context.Context, orderID string) (tracking.UnifiedStatus, error) {
	if cached, ok := s.lookup(ctx, orderID); ok {
		return cached.Status, nil
	}
	view, err := s.Track(ctx, orderID)
	if err != nil {
		return tracking.UnifiedStatus{}, err
	}
	return view.Unified, nil
}

// Transitions lists the journaled transitions of an order
func (s *TrackingService) Transitions(ctx context.Context, orderID string, limit int) ([]order.TransitionRecord, error) {
	if s.journal == nil {
		return []order.TransitionRecord{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.journal.ListByOrder(ctx, orderID, limit)
}

// Vocabulary returns the canonical status vocabulary
func (s *TrackingService) Vocabulary() tracking.Vocabulary {
	return tracking.BuildVocabulary()
}

func (s *TrackingService) lookup(ctx context.Context, orderID string) (*CachedStatus, bool) {
	cached, ok, err := s.cache.Get(ctx, orderID)
	if err != nil {
		s.logger.Warn("unified status cache read failed", zap.String("order_id", orderID), zap.Error(err))
		ok = false
	}
	ok = ok && cached != nil
	s.metrics.RecordCacheLookup(ctx, ok)
	return cached, ok
}
