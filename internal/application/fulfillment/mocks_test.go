package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// MockOrderGateway is a mock implementation of order.Gateway
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderGateway) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderGateway) Reject(ctx context.Context, id, reason, note string) (*order.Order, error) {
	args := m.Called(ctx, id, reason, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderGateway) Refund(ctx context.Context, id, reason, note string) (*order.Order, error) {
	args := m.Called(ctx, id, reason, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockShippingGateway is a mock implementation of shipping.Gateway
type MockShippingGateway struct {
	mock.Mock
}

func (m *MockShippingGateway) ListLogs(ctx context.Context, filter shipping.ListFilter) ([]*shipping.ShippingLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipping.ShippingLog), args.Error(1)
}

func (m *MockShippingGateway) LogsByOrder(ctx context.Context, orderID string) (shipping.History, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shipping.History), args.Error(1)
}

func (m *MockShippingGateway) CreateLog(ctx context.Context, log *shipping.ShippingLog) (*shipping.ShippingLog, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingLog), args.Error(1)
}

func (m *MockShippingGateway) UpdateStatus(ctx context.Context, logID string, update shipping.StatusUpdate) (*shipping.ShippingLog, error) {
	args := m.Called(ctx, logID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingLog), args.Error(1)
}

func (m *MockShippingGateway) DeleteLog(ctx context.Context, logID string) error {
	args := m.Called(ctx, logID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockJournal is a mock implementation of order.TransitionJournal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Record(ctx context.Context, rec *order.TransitionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockJournal) ListByOrder(ctx context.Context, orderID string, limit int) ([]order.TransitionRecord, error) {
	args := m.Called(ctx, orderID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.TransitionRecord), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// fakeCache is an in-memory StatusCache
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]CachedStatus
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]CachedStatus)}
}

func (c *fakeCache) Get(_ context.Context, orderID string) (*CachedStatus, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[orderID]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (c *fakeCache) Set(_ context.Context, orderID string, status CachedStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[orderID] = status
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, orderID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orderID)
	c.invalidated = append(c.invalidated, orderID)
	return nil
}

// fakeGuard is an in-memory InFlightGuard
type fakeGuard struct {
	mu   sync.Mutex
	held map[string]string
	seq  int
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: make(map[string]string)}
}

func (g *fakeGuard) Acquire(_ context.Context, orderID string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[orderID]; ok {
		return "", false, nil
	}
	g.seq++
	token := fmt.Sprintf("t-%d", g.seq)
	g.held[orderID] = token
	return token, true, nil
}

func (g *fakeGuard) Release(_ context.Context, orderID, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[orderID] == token {
		delete(g.held, orderID)
	}
	return nil
}

func (g *fakeGuard) isHeld(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[orderID]
	return ok
}

// fakeMetrics counts recorded transitions
type fakeMetrics struct {
	mu          sync.Mutex
	outcomes    []string
	secondaries int
	lookups     []bool
}

func (m *fakeMetrics) RecordTransition(_ context.Context, _, _, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) RecordSecondaryFailure(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secondaries++
}

func (m *fakeMetrics) RecordCacheLookup(_ context.Context, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, hit)
}

func newTestOrder(id string, status order.Status) *order.Order {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	o := &order.Order{
		ID:             id,
		CustomerID:     "cust-1",
		Status:         status,
		TotalAmount:    decimal.NewFromInt(350000),
		ContactName:    "Nguyen Van A",
		ContactPhone:   "0901234567",
		ContactAddress: "12 Le Loi, District 1",
		Items: []order.Item{
			{ProductID: "p-1", ProductName: "Serum", Quantity: 2, Price: decimal.NewFromInt(100000)},
			{ProductID: "p-2", ProductName: "Sunscreen", Quantity: 1, Price: decimal.NewFromInt(150000)},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if status == order.StatusRejected || status == order.StatusRefunded {
		o.RejectionReason = "Out of stock"
	}
	return o
}

func withStatus(o *order.Order, status order.Status) *order.Order {
	c := o.Clone()
	c.Status = status
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	return c
}
