package shipping

import "context"

// ListFilter narrows a shipping log listing
type ListFilter struct {
	OrderID        string
	Status         Status
	Carrier        string
	TrackingNumber string
	Search         string
	Page           int
	PageSize       int
}

// Gateway reads and mutates shipping logs held by the storefront backend
type Gateway interface {
	// ListLogs lists shipping logs matching the filter
	ListLogs(ctx context.Context, filter ListFilter) ([]*ShippingLog, error)

	// LogsByOrder returns every shipping log of one order
	LogsByOrder(ctx context.Context, orderID string) (History, error)

	// CreateLog provisions a shipping log upstream
	CreateLog(ctx context.Context, log *ShippingLog) (*ShippingLog, error)

	// UpdateStatus writes a staff status change
	UpdateStatus(ctx context.Context, logID string, update StatusUpdate) (*ShippingLog, error)

	// DeleteLog removes a shipping log
	DeleteLog(ctx context.Context, logID string) error
}
