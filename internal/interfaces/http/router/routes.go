package router

import (
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/handler"
)

// Handlers groups the HTTP handlers mounted by FulfillmentRoutes
type Handlers struct {
	Orders   *handler.OrderHandler
	Shipping *handler.ShippingLogHandler
	System   *handler.SystemHandler
}

// FulfillmentRoutes builds the route groups of the back-office API
func FulfillmentRoutes(h Handlers) []RouteRegistrar {
	orders := NewDomainGroup("orders", "/orders")
	orders.PATCH("/:id/status", h.Orders.ChangeStatus)
	orders.POST("/:id/approve", h.Orders.Approve)
	orders.POST("/:id/reject", h.Orders.Reject)
	orders.POST("/:id/refund", h.Orders.Refund)
	orders.GET("/:id/tracking", h.Orders.GetTracking)
	orders.GET("/:id/unified-status", h.Orders.GetUnifiedStatus)
	orders.GET("/:id/transitions", h.Orders.ListTransitions)
	orders.GET("/:id/shipping-logs", h.Shipping.OrderHistory)

	logs := NewDomainGroup("shipping-logs", "/shipping-logs")
	logs.GET("", h.Shipping.List)
	logs.POST("", h.Shipping.Create)
	logs.PATCH("/:id/status", h.Shipping.UpdateStatus)
	logs.DELETE("/:id", h.Shipping.Delete)

	statuses := NewDomainGroup("shipping-statuses", "/shipping-statuses")
	statuses.GET("", h.Shipping.Statuses)

	registrars := []RouteRegistrar{orders, logs, statuses}
	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		system.GET("/ping", h.System.Ping)
		registrars = append(registrars, system)
	}
	return registrars
}
