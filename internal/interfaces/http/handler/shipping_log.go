package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// ShippingLogHandler handles shipping log HTTP requests
type ShippingLogHandler struct {
	BaseHandler
	shipping *fulfillment.ShippingService
	tracking *fulfillment.TrackingService
}

// NewShippingLogHandler creates a new ShippingLogHandler
func NewShippingLogHandler(shippingService *fulfillment.ShippingService, tracking *fulfillment.TrackingService) *ShippingLogHandler {
	return &ShippingLogHandler{
		shipping: shippingService,
		tracking: tracking,
	}
}

// List lists shipping logs
// GET /api/v1/shipping-logs
func (h *ShippingLogHandler) List(c *gin.Context) {
	var q ListShippingLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	logs, err := h.shipping.List(c.Request.Context(), q.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := toShippingLogResponses(logs)
	h.SuccessList(c, items, len(items))
}

// OrderHistory returns every shipping log of an order, current first
// GET /api/v1/orders/:id/shipping-logs
func (h *ShippingLogHandler) OrderHistory(c *gin.Context) {
	history, err := h.shipping.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := toShippingLogResponses(history)
	h.SuccessList(c, items, len(items))
}

// Create provisions a shipping log for an approved order
// POST /api/v1/shipping-logs
func (h *ShippingLogHandler) Create(c *gin.Context) {
	var req CreateShippingLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	log, err := h.shipping.Create(c.Request.Context(), fulfillment.CreateShippingLogInput{
		OrderID:           req.OrderID,
		Carrier:           req.Carrier,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
		Notes:             req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toShippingLogResponse(log))
}

// UpdateStatus changes the status of a shipping log
// PATCH /api/v1/shipping-logs/:id/status
func (h *ShippingLogHandler) UpdateStatus(c *gin.Context) {
	var req UpdateShippingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.shipping.UpdateStatus(c.Request.Context(), c.Param("id"), shipping.StatusUpdate{
		Status:          shipping.ParseStatus(req.Status),
		CurrentLocation: req.CurrentLocation,
		Notes:           req.Notes,
		ActualDelivery:  req.ActualDelivery,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ShippingStatusUpdateResponse{
		Previous: string(result.Previous),
		Forward:  result.Forward,
		Warning:  result.Warning,
	}
	if l := toShippingLogResponse(result.Log); l != nil {
		resp.Log = *l
	} else {
		resp.Log = ShippingLogResponse{ID: c.Param("id"), Status: req.Status}
	}
	h.Success(c, resp)
}

// Delete removes a shipping log
// DELETE /api/v1/shipping-logs/:id
func (h *ShippingLogHandler) Delete(c *gin.Context) {
	if err := h.shipping.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Statuses returns the order and shipping status vocabulary
// GET /api/v1/shipping-statuses
func (h *ShippingLogHandler) Statuses(c *gin.Context) {
	h.Success(c, h.tracking.Vocabulary())
}
