package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// CreateShippingLogInput is a manual shipping log creation by staff
type CreateShippingLogInput struct {
	OrderID           string
	Carrier           string
	TrackingNumber    string
	EstimatedDelivery *time.Time
	Notes             string
}

// StatusUpdateResult is the result of a staff shipping status change
type StatusUpdateResult struct {
	Log      *shipping.ShippingLog
	Previous shipping.Status
	Forward  bool
	Warning  string
}

// ShippingService handles shipping log operations for staff
type ShippingService struct {
	orders         order.Gateway
	shipping       shipping.Gateway
	store          *StateStore
	cache          StatusCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewShippingService creates a new ShippingService
func NewShippingService(orders order.Gateway, shippingGateway shipping.Gateway, store *StateStore, cache StatusCache, logger *zap.Logger) *ShippingService {
	return &ShippingService{
		orders:   orders,
		shipping: shippingGateway,
		store:    store,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for shipment notifications
func (s *ShippingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List lists shipping logs
func (s *ShippingService) List(ctx context.Context, filter shipping.ListFilter) ([]*shipping.ShippingLog, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.shipping.ListLogs(ctx, filter)
}

// History returns every log of an order, current first
func (s *ShippingService) History(ctx context.Context, orderID string) (shipping.History, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order id is required")
	}
	history, err := s.shipping.LogsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, l := range history {
		if l.Order == nil {
			l.Order = shipping.OrderRefID(orderID)
		}
		s.store.UpsertLog(l)
	}
	return history.NewestFirst(), nil
}

// Create provisions a shipping log by hand. The order must be approved or
// delivered.
func (s *ShippingService) Create(ctx context.Context, in CreateShippingLogInput) (*shipping.ShippingLog, error) {
	orderID := strings.TrimSpace(in.OrderID)
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
	log, err := shipping.NewForApprovedOrder(ord.Snapshot(), strings.TrimSpace(in.Carrier))
	if err != nil {
		return nil, err
	}
	log.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	log.EstimatedDelivery = in.EstimatedDelivery
	log.Notes = in.Notes

	created, err := s.shipping.CreateLog(context.WithoutCancel(ctx), log)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = log
	}
	if created.Order == nil {
		created.Order = log.Order
	}

	s.store.PutOrder(ord)
	s.store.UpsertLog(created)
	s.invalidate(ctx, orderID)
	s.publish(ctx, log.PullDomainEvents())

	s.logger.Info("shipping log created",
		zap.String("order_id", orderID),
		zap.String("log_id", created.ID),
		zap.String("carrier", created.Carrier),
	)
	return created, nil
}

// UpdateStatus applies a staff status change. Out-of-order moves are
// accepted and reported as a warning.
func (s *ShippingService) UpdateStatus(ctx context.Context, logID string, update shipping.StatusUpdate) (*StatusUpdateResult, error) {
	logID = strings.TrimSpace(logID)
	if logID == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shipping log id is required")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	update = update.WithDeliveryStamp(s.now())

	result := &StatusUpdateResult{Previous: shipping.StatusUnknown, Forward: true}
	known, found := s.store.FindLog(logID)
	if found {
		result.Previous = known.Status
		result.Forward = update.Status.IsForwardOf(known.Status)
	}

	updated, err := s.shipping.UpdateStatus(context.WithoutCancel(ctx), logID, update)
	if err != nil {
		return nil, err
	}

	if updated == nil && found {
		c := *known
		updated = &c
		updated.ApplyStatus(update, s.now())
		updated.ClearDomainEvents()
	}
	if updated != nil {
		if found && updated.Order == nil {
			updated.Order = known.Order
		}
		if result.Previous != updated.Status {
			s.publish(ctx, []shared.DomainEvent{
				shipping.NewShippingStatusChangedEvent(updated, result.Previous, result.Forward),
			})
		}
		s.store.UpsertLog(updated)
		s.invalidate(ctx, updated.OrderID())
	}
	result.Log = updated

	if !result.Forward {
		result.Warning = fmt.Sprintf("Shipping status moved backwards from %s to %s", result.Previous, update.Status)
		s.logger.Warn("out-of-order shipping status update",
			zap.String("log_id", logID),
			zap.String("from", string(result.Previous)),
			zap.String("to", string(update.Status)),
		)
	}
	return result, nil
}

// Delete removes a shipping log
func (s *ShippingService) Delete(ctx context.Context, logID string) error {
	logID = strings.TrimSpace(logID)
	if logID == "" {
		return shared.NewDomainError(shared.CodeValidation, "Shipping log id is required")
	}
	if err := s.shipping.DeleteLog(context.WithoutCancel(ctx), logID); err != nil {
		return err
	}
	if orderID, ok := s.store.RemoveLog(logID); ok {
		s.invalidate(ctx, orderID)
	}
	s.logger.Info("shipping log deleted", zap.String("log_id", logID))
	return nil
}

func (s *ShippingService) invalidate(ctx context.Context, orderID string) {
	if orderID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, orderID); err != nil {
		s.logger.Warn("failed to invalidate unified status", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *ShippingService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
