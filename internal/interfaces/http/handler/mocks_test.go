package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/cache"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/middleware"
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

// fulfillmentFixture wires real services over mock gateways
type fulfillmentFixture struct {
	orders   *MockOrderGateway
	shipping *MockShippingGateway
	journal  *MockJournal
	store    *fulfillment.StateStore
	engine   *gin.Engine
}

func newFulfillmentFixture(t *testing.T) *fulfillmentFixture {
	t.Helper()
	middleware.SetupValidator()

	f := &fulfillmentFixture{
		orders:   new(MockOrderGateway),
		shipping: new(MockShippingGateway),
		journal:  new(MockJournal),
		store:    fulfillment.NewStateStore(),
	}
	f.journal.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	statusCache := cache.NewInMemoryStatusCache(time.Minute)
	guard := cache.NewInMemoryInFlightGuard(time.Minute)
	log := zap.NewNop()

	orch := fulfillment.NewOrchestrator(f.orders, f.shipping, f.store, guard, statusCache, log,
		fulfillment.WithJournal(f.journal),
		fulfillment.WithShippingProvisioning(true, "GHN"),
	)
	trackingService := fulfillment.NewTrackingService(f.orders, f.shipping, f.store, statusCache, log)
	trackingService.SetJournal(f.journal)
	shippingService := fulfillment.NewShippingService(f.orders, f.shipping, f.store, statusCache, log)

	orderHandler := NewOrderHandler(orch, trackingService)
	shippingHandler := NewShippingLogHandler(shippingService, trackingService)

	engine := gin.New()
	engine.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.ActorKey, "staff-1")
		c.Next()
	})
	engine.PATCH("/orders/:id/status", orderHandler.ChangeStatus)
	engine.POST("/orders/:id/approve", orderHandler.Approve)
	engine.POST("/orders/:id/reject", orderHandler.Reject)
	engine.POST("/orders/:id/refund", orderHandler.Refund)
	engine.GET("/orders/:id/tracking", orderHandler.GetTracking)
	engine.GET("/orders/:id/unified-status", orderHandler.GetUnifiedStatus)
	engine.GET("/orders/:id/transitions", orderHandler.ListTransitions)
	engine.GET("/orders/:id/shipping-logs", shippingHandler.OrderHistory)
	engine.GET("/shipping-logs", shippingHandler.List)
	engine.POST("/shipping-logs", shippingHandler.Create)
	engine.PATCH("/shipping-logs/:id/status", shippingHandler.UpdateStatus)
	engine.DELETE("/shipping-logs/:id", shippingHandler.Delete)
	engine.GET("/shipping-statuses", shippingHandler.Statuses)
	f.engine = engine
	return f
}

func (f *fulfillmentFixture) seed(o *order.Order) {
	f.store.Put(o.ID, fulfillment.OrderState{Order: o})
}

func (f *fulfillmentFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of the response envelope
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
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
