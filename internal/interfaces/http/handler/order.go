package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle HTTP requests
type OrderHandler struct {
	BaseHandler
	orchestrator *fulfillment.Orchestrator
	tracking     *fulfillment.TrackingService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orchestrator *fulfillment.Orchestrator, tracking *fulfillment.TrackingService) *OrderHandler {
	return &OrderHandler{
		orchestrator: orchestrator,
		tracking:     tracking,
	}
}

// ChangeStatus moves an order to any reachable status
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	// the validator has already accepted the value
	status, _ := order.ParseStatus(req.Status)
	h.transition(c, status, req.Reason, req.Note)
}

// Approve approves a pending order
// POST /api/v1/orders/:id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	h.transition(c, order.StatusApproved, "", "")
}

// Reject rejects an order with a mandatory reason
// POST /api/v1/orders/:id/reject
func (h *OrderHandler) Reject(c *gin.Context) {
	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	h.transition(c, order.StatusRejected, req.RejectionReason, req.Note)
}

// Refund refunds a rejected order. The body is optional.
// POST /api/v1/orders/:id/refund
func (h *OrderHandler) Refund(c *gin.Context) {
	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ValidationError(c, err)
		return
	}
	h.transition(c, order.StatusRefunded, req.RefundReason, req.Note)
}

func (h *OrderHandler) transition(c *gin.Context, status order.Status, reason, note string) {
	tc := fulfillment.TransitionContext{
		Reason:    strings.TrimSpace(reason),
		Note:      strings.TrimSpace(note),
		Actor:     middleware.GetActor(c),
		RequestID: getRequestID(c),
	}

	out, err := h.orchestrator.ChangeStatus(c.Request.Context(), c.Param("id"), status, tc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransitionResponse(out))
}

// GetTracking returns the order with its current shipment and unified status
// GET /api/v1/orders/:id/tracking
func (h *OrderHandler) GetTracking(c *gin.Context) {
	view, err := h.tracking.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTrackingResponse(view))
}

// GetUnifiedStatus returns only the unified status of an order, served
// from the cache when present
// GET /api/v1/orders/:id/unified-status
func (h *OrderHandler) GetUnifiedStatus(c *gin.Context) {
	orderID := c.Param("id")
	unified, err := h.tracking.UnifiedStatus(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UnifiedStatusResponse{
		OrderID:       orderID,
		UnifiedStatus: unified,
		Closed:        unified.IsClosed(),
	})
}

// ListTransitions returns the journaled status changes of an order, newest first
// GET /api/v1/orders/:id/transitions
func (h *OrderHandler) ListTransitions(c *gin.Context) {
	var q TransitionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	records, err := h.tracking.Transitions(c.Request.Context(), c.Param("id"), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := toTransitionRecordResponses(records)
	h.SuccessList(c, items, len(items))
}
