package inventory

import "github.com/google/uuid"

// CreateDepotRequest registers a depot.
type CreateDepotRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"required,max=200"`
}

// UpdateDepotRequest edits a depot.
type UpdateDepotRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Active   *bool   `json:"active,omitempty"`
}

// AdjustStockRequest moves stock in or out of a depot.
type AdjustStockRequest struct {
	DepotID    uuid.UUID `json:"depot_id" validate:"required"`
	CementType string    `json:"cement_type" validate:"required,max=100"`
	Quantity   float64   `json:"quantity" validate:"required,gt=0"`
	Unit       string    `json:"unit" validate:"required,oneof=tons bags"`
	Direction  string    `json:"direction" validate:"required,oneof=receive issue"`
}

// ListStockResponse wraps a stock listing.
type ListStockResponse struct {
	Stock []StockRow `json:"stock"`
}
