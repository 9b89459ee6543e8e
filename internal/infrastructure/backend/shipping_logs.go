package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

type createLogRequest struct {
	OrderID           string     `json:"orderId"`
	Status            string     `json:"status"`
	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	Carrier           string     `json:"carrier,omitempty"`
	RecipientName     string     `json:"recipientName,omitempty"`
	RecipientPhone    string     `json:"recipientPhone,omitempty"`
	ShippingAddress   string     `json:"shippingAddress,omitempty"`
	ProductSummary    any        `json:"productSummary,omitempty"`
	ItemCount         int        `json:"itemCount,omitempty"`
	TotalQuantity     int        `json:"totalQuantity,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type updateLogStatusRequest struct {
	Status          string     `json:"status"`
	CurrentLocation string     `json:"currentLocation,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	ActualDelivery  *time.Time `json:"actualDelivery,omitempty"`
}

// ListLogs lists shipping logs. An unreadable body degrades to an empty list.
func (g *ShippingGateway) ListLogs(ctx context.Context, filter shipping.ListFilter) ([]*shipping.ShippingLog, error) {
	env, err := g.doRequest(ctx, http.MethodGet, "/shipping-logs", listQuery(filter), nil)
	if err != nil {
		if errors.Is(err, errMalformed) {
			g.logger.Warn("unreadable shipping log list, returning empty", zap.Error(err))
			return []*shipping.ShippingLog{}, nil
		}
		return nil, err
	}
	return g.normalizeList(env.Data), nil
}

// LogsByOrder returns every shipping log of one order. When the per-order
// endpoint is missing or failing the logs embedded in the order document
// are used. Session and permission errors are returned as is.
func (g *ShippingGateway) LogsByOrder(ctx context.Context, orderID string) (shipping.History, error) {
	env, err := g.doRequest(ctx, http.MethodGet, "/shipping-logs/order/"+escape(orderID), nil, nil)
	switch {
	case err == nil:
		return shipping.NewHistory(g.normalizeList(env.Data)...), nil
	case errors.Is(err, errMalformed):
		g.logger.Warn("unreadable shipping history, returning empty", zap.String("order_id", orderID), zap.Error(err))
		return shipping.History{}, nil
	case errors.Is(err, shared.ErrSessionExpired), errors.Is(err, shared.ErrPermissionDenied):
		return nil, err
	}
	if !errors.Is(err, shared.ErrNotFound) {
		g.logger.Warn("per-order shipping history failed, reading the order document",
			zap.String("order_id", orderID), zap.Error(err))
	}
	return g.embeddedLogs(ctx, orderID)
}

// embeddedLogs reads the shipping or shippingLogs field of an order document
func (g *ShippingGateway) embeddedLogs(ctx context.Context, orderID string) (shipping.History, error) {
	raw, err := g.getOrderRaw(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var items []any
	for _, key := range []string{"shippingLogs", "shipping"} {
		switch v := raw[key].(type) {
		case []any:
			items = append(items, v...)
		case map[string]any:
			items = append(items, v)
		}
	}

	logs := make([]*shipping.ShippingLog, 0, len(items))
	for _, item := range items {
		obj, ok := shared.AsRaw(item)
		if !ok {
			continue
		}
		log, err := shipping.NormalizeLog(obj)
		if err != nil {
			g.logger.Warn("skipping embedded shipping log", zap.String("order_id", orderID), zap.Error(err))
			continue
		}
		if log.Order == nil {
			log.Order = shipping.OrderRefID(orderID)
		}
		logs = append(logs, log)
	}
	return shipping.NewHistory(logs...), nil
}

// CreateLog provisions a shipping log
func (g *ShippingGateway) CreateLog(ctx context.Context, log *shipping.ShippingLog) (*shipping.ShippingLog, error) {
	body := createLogRequest{
		OrderID:           log.OrderID(),
		Status:            log.Status.String(),
		TrackingNumber:    log.TrackingNumber,
		Carrier:           log.Carrier,
		RecipientName:     log.Recipient.Name,
		RecipientPhone:    log.Recipient.Phone,
		ShippingAddress:   log.Recipient.Address,
		EstimatedDelivery: log.EstimatedDelivery,
		Notes:             log.Notes,
	}
	switch s := log.ProductSummary.(type) {
	case shipping.StructuredSummary:
		body.ProductSummary = s
		body.ItemCount = s.Count
		body.TotalQuantity = s.TotalQuantity
	case shipping.SummaryText:
		if s != "" {
			body.ProductSummary = string(s)
		}
	}

	env, err := g.doRequest(ctx, http.MethodPost, "/shipping-logs", nil, body)
	if err != nil {
		return nil, unavailable("shipping log", err)
	}
	return g.echoedLog(env, log)
}

// UpdateStatus writes a staff status change
func (g *ShippingGateway) UpdateStatus(ctx context.Context, logID string, update shipping.StatusUpdate) (*shipping.ShippingLog, error) {
	body := updateLogStatusRequest{
		Status:          update.Status.String(),
		CurrentLocation: update.CurrentLocation,
		Notes:           update.Notes,
		ActualDelivery:  update.ActualDelivery,
	}
	env, err := g.doRequest(ctx, http.MethodPatch, "/shipping-logs/"+escape(logID)+"/status", nil, body)
	if err != nil {
		return nil, unavailable("shipping log", err)
	}
	return g.echoedLog(env, nil)
}

// DeleteLog removes a shipping log
func (g *ShippingGateway) DeleteLog(ctx context.Context, logID string) error {
	_, err := g.doRequest(ctx, http.MethodDelete, "/shipping-logs/"+escape(logID), nil, nil)
	if errors.Is(err, errMalformed) {
		return nil
	}
	return err
}

// echoedLog decodes the log returned by a write, falling back to sent when
// the backend acknowledged without one
func (g *ShippingGateway) echoedLog(env *envelope, sent *shipping.ShippingLog) (*shipping.ShippingLog, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return sent, nil
	}
	raw, err := decodeOne(env.Data, "shippingLog")
	if err != nil {
		g.logger.Warn("shipping log write acknowledged with unreadable body", zap.Error(err))
		return sent, nil
	}
	log, err := shipping.NormalizeLog(raw)
	if err != nil {
		g.logger.Warn("shipping log write returned an entity without id", zap.Error(err))
		return sent, nil
	}
	if log.Order == nil && sent != nil {
		log.Order = sent.Order
	}
	return log, nil
}

func (g *ShippingGateway) normalizeList(data []byte) []*shipping.ShippingLog {
	raws, err := decodeList(data)
	if err != nil {
		g.logger.Warn("unreadable shipping log list, returning empty", zap.Error(err))
		return []*shipping.ShippingLog{}
	}
	logs := make([]*shipping.ShippingLog, 0, len(raws))
	for _, raw := range raws {
		log, err := shipping.NormalizeLog(raw)
		if err != nil {
			g.logger.Warn("skipping shipping log", zap.Error(err))
			continue
		}
		logs = append(logs, log)
	}
	return logs
}

func listQuery(f shipping.ListFilter) url.Values {
	q := url.Values{}
	if f.OrderID != "" {
		q.Set("orderId", f.OrderID)
	}
	if f.Status != "" {
		q.Set("status", f.Status.String())
	}
	if f.Carrier != "" {
		q.Set("carrier", f.Carrier)
	}
	if f.TrackingNumber != "" {
		q.Set("trackingNumber", f.TrackingNumber)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("limit", strconv.Itoa(f.PageSize))
	}
	return q
}
