package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/tracking"
)

// ==================== Requests ====================

// ChangeStatusRequest is the body of PATCH /orders/:id/status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
	Reason string `json:"reason" binding:"max=500"`
	Note   string `json:"note" binding:"max=1000"`
}

// RejectOrderRequest is the body of POST /orders/:id/reject
type RejectOrderRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required,max=500"`
	Note            string `json:"note" binding:"max=1000"`
}

// RefundOrderRequest is the body of POST /orders/:id/refund
type RefundOrderRequest struct {
	RefundReason string `json:"refund_reason" binding:"max=500"`
	Note         string `json:"note" binding:"max=1000"`
}

// TransitionsQuery bounds the journal listing
type TransitionsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// CreateShippingLogRequest is the body of POST /shipping-logs
type CreateShippingLogRequest struct {
	OrderID           string     `json:"order_id" binding:"required"`
	Carrier           string     `json:"carrier" binding:"max=100"`
	TrackingNumber    string     `json:"tracking_number" binding:"max=100"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Notes             string     `json:"notes" binding:"max=1000"`
}

// UpdateShippingStatusRequest is the body of PATCH /shipping-logs/:id/status
type UpdateShippingStatusRequest struct {
	Status          string     `json:"status" binding:"required,shipping_status"`
	CurrentLocation string     `json:"current_location" binding:"max=255"`
	Notes           string     `json:"notes" binding:"max=1000"`
	ActualDelivery  *time.Time `json:"actual_delivery"`
}

// ListShippingLogsQuery holds the listing filters
type ListShippingLogsQuery struct {
	OrderID        string `form:"order_id"`
	Status         string `form:"status" binding:"omitempty,shipping_status"`
	Carrier        string `form:"carrier"`
	TrackingNumber string `form:"tracking_number"`
	Search         string `form:"search"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// toFilter converts the query into a gateway filter
func (q ListShippingLogsQuery) toFilter() shipping.ListFilter {
	f := shipping.ListFilter{
		OrderID:        q.OrderID,
		Carrier:        q.Carrier,
		TrackingNumber: q.TrackingNumber,
		Search:         q.Search,
		Page:           q.Page,
		PageSize:       q.PageSize,
	}
	if q.Status != "" {
		f.Status = shipping.ParseStatus(q.Status)
	}
	return f
}

// ==================== Responses ====================

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ContactResponse is the delivery contact of an order
type ContactResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Items           []OrderItemResponse `json:"items"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	RefundReason    string              `json:"refund_reason,omitempty"`
	Note            string              `json:"note,omitempty"`
	Contact         ContactResponse     `json:"contact"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ShippingLogResponse represents a shipping log in API responses
type ShippingLogResponse struct {
	ID                string                 `json:"id"`
	OrderID           string                 `json:"order_id"`
	Status            string                 `json:"status"`
	RawStatus         string                 `json:"raw_status,omitempty"`
	TrackingNumber    string                 `json:"tracking_number"`
	Carrier           string                 `json:"carrier"`
	CurrentLocation   string                 `json:"current_location"`
	Recipient         shipping.Recipient     `json:"recipient"`
	ProductSummary    string                 `json:"product_summary"`
	ProductItems      []shipping.SummaryItem `json:"product_items,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time             `json:"actual_delivery,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// TransitionResponse is the result of an order status change
type TransitionResponse struct {
	Outcome       string                 `json:"outcome"`
	OrderID       string                 `json:"order_id"`
	From          string                 `json:"from"`
	To            string                 `json:"to"`
	Order         *OrderResponse         `json:"order,omitempty"`
	ShippingLog   *ShippingLogResponse   `json:"shipping_log,omitempty"`
	UnifiedStatus tracking.UnifiedStatus `json:"unified_status"`
	Committed     bool                   `json:"committed"`
	Warnings      []string               `json:"warnings,omitempty"`
	ElapsedMs     int64                  `json:"elapsed_ms"`
}

// TrackingResponse is the order tracking view
type TrackingResponse struct {
	Order         *OrderResponse         `json:"order"`
	CurrentLog    *ShippingLogResponse   `json:"current_log"`
	History       []ShippingLogResponse  `json:"history"`
	UnifiedStatus tracking.UnifiedStatus `json:"unified_status"`
	Closed        bool                   `json:"closed"`
	Cached        bool                   `json:"cached"`
}

// UnifiedStatusResponse is the unified status of one order
type UnifiedStatusResponse struct {
	OrderID       string                 `json:"order_id"`
	UnifiedStatus tracking.UnifiedStatus `json:"unified_status"`
	Closed        bool                   `json:"closed"`
}

// TransitionRecordResponse is one journal entry
type TransitionRecordResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Outcome     string    `json:"outcome"`
	ErrorCode   string    `json:"error_code,omitempty"`
	Warning     string    `json:"warning,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	ShippingLog string    `json:"shipping_log_id,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShippingStatusUpdateResponse is the result of a staff shipping update
type ShippingStatusUpdateResponse struct {
	Log      ShippingLogResponse `json:"log"`
	Previous string              `json:"previous_status"`
	Forward  bool                `json:"forward"`
	Warning  string              `json:"warning,omitempty"`
}

// ==================== Converters ====================

func toOrderResponse(o *order.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return &OrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		Items:           items,
		RejectionReason: o.RejectionReason,
		RefundReason:    o.RefundReason,
		Note:            o.Note,
		Contact: ContactResponse{
			Name:    o.ContactName,
			Phone:   o.ContactPhone,
			Address: o.ContactAddress,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toShippingLogResponse(l *shipping.ShippingLog) *ShippingLogResponse {
	if l == nil {
		return nil
	}
	resp := &ShippingLogResponse{
		ID:                l.ID,
		OrderID:           l.OrderID(),
		Status:            string(l.Status),
		TrackingNumber:    l.TrackingNumber,
		Carrier:           l.Carrier,
		CurrentLocation:   l.CurrentLocation,
		Recipient:         l.Recipient,
		Notes:             l.Notes,
		EstimatedDelivery: l.EstimatedDelivery,
		ActualDelivery:    l.ActualDelivery,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if l.RawStatus != string(l.Status) {
		resp.RawStatus = l.RawStatus
	}
	if l.ProductSummary != nil {
		resp.ProductSummary = l.ProductSummary.Display()
		if structured, ok := l.ProductSummary.(shipping.StructuredSummary); ok {
			resp.ProductItems = structured.Items
		}
	}
	return resp
}

func toShippingLogResponses(logs []*shipping.ShippingLog) []ShippingLogResponse {
	out := make([]ShippingLogResponse, 0, len(logs))
	for _, l := range logs {
		if r := toShippingLogResponse(l); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func toTransitionResponse(out *fulfillment.TransitionOutcome) TransitionResponse {
	resp := TransitionResponse{
		Outcome:       string(out.Kind),
		OrderID:       out.OrderID,
		From:          string(out.From),
		To:            string(out.To),
		Order:         toOrderResponse(out.Order),
		ShippingLog:   toShippingLogResponse(out.ShippingLog),
		UnifiedStatus: out.Unified,
		Committed:     out.Kind.IsCommitted(),
		ElapsedMs:     out.Elapsed.Milliseconds(),
	}
	if out.HasWarnings() {
		resp.Warnings = out.WarningMessages()
	}
	return resp
}

func toTrackingResponse(view *fulfillment.TrackingView) TrackingResponse {
	return TrackingResponse{
		Order:         toOrderResponse(view.Order),
		CurrentLog:    toShippingLogResponse(view.Current),
		History:       toShippingLogResponses(view.History),
		UnifiedStatus: view.Unified,
		Closed:        view.Unified.IsClosed(),
		Cached:        view.Cached,
	}
}

func toTransitionRecordResponses(records []order.TransitionRecord) []TransitionRecordResponse {
	out := make([]TransitionRecordResponse, len(records))
	for i, r := range records {
		out[i] = TransitionRecordResponse{
			ID:          r.ID,
			OrderID:     r.OrderID,
			From:        string(r.FromStatus),
			To:          string(r.ToStatus),
			Outcome:     r.Outcome,
			ErrorCode:   r.ErrorCode,
			Warning:     r.Warning,
			Reason:      r.Reason,
			Actor:       r.Actor,
			RequestID:   r.RequestID,
			ShippingLog: r.ShippingLog,
			DurationMs:  r.DurationMs,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out
}
