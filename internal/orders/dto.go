package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// CreateOrderRequest represents a new cement order.
type CreateOrderRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" validate:"required"`
	CementType  string          `json:"cement_type" validate:"required,max=100"`
	Quantity    float64         `json:"quantity" validate:"required,gt=0"`
	Unit        Unit            `json:"unit" validate:"required,oneof=tons bags"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
}

// UpdateOrderRequest edits an order while it is still in the requested status.
type UpdateOrderRequest struct {
	CementType  *string          `json:"cement_type,omitempty" validate:"omitempty,max=100"`
	Quantity    *float64         `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit        *Unit            `json:"unit,omitempty" validate:"omitempty,oneof=tons bags"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// DispatchRequest assigns a truck and driver and moves the order out for delivery.
type DispatchRequest struct {
	TruckID  uuid.UUID `json:"truck_id" validate:"required"`
	DriverID uuid.UUID `json:"driver_id" validate:"required"`
}

// ReassignRequest swaps the assigned fleet while the order is dispatched.
type ReassignRequest struct {
	TruckID  uuid.UUID `json:"truck_id" validate:"required"`
	DriverID uuid.UUID `json:"driver_id" validate:"required"`
}

// ReconcileRequest settles a delivered order against its OTP. The sum of the
// three quantity splits is arbitrated by the reconciliation procedure, not here.
type ReconcileRequest struct {
	OTP        string  `json:"otp" validate:"required,len=6,numeric"`
	QtyGood    float64 `json:"qty_good" validate:"gte=0"`
	QtyMissing float64 `json:"qty_missing" validate:"gte=0"`
	QtyDamaged float64 `json:"qty_damaged" validate:"gte=0"`
	Reason     *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CancelOrderRequest cancels a non-terminal order.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// ListOrdersRequest represents filters for listing orders.
type ListOrdersRequest struct {
	Status     *OrderStatus `json:"status,omitempty"`
	CustomerID *uuid.UUID   `json:"customer_id,omitempty"`
	DateFrom   *time.Time   `json:"date_from,omitempty"`
	DateTo     *time.Time   `json:"date_to,omitempty"`
	Limit      int          `json:"limit" validate:"gte=0,lte=500"`
	Offset     int          `json:"offset" validate:"gte=0"`
}

// ListOrdersResponse is the paginated listing payload.
type ListOrdersResponse struct {
	Orders     []OrderWithDetails `json:"orders"`
	Total      int                `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	Pagination shared.Pagination  `json:"pagination"`
}

// ReconcileResult carries the verdict of the reconciliation procedure.
type ReconcileResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DispatchResult returns the credentials issued at dispatch.
type DispatchResult struct {
	Order   *Order `json:"order"`
	OTP     string `json:"otp"`
	Waybill string `json:"waybill_number"`
}
