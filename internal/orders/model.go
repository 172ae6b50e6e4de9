package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle of a cement order.
type OrderStatus string

const (
	StatusRequested  OrderStatus = "requested"  // created, editable, awaiting payment and dispatch
	StatusDispatched OrderStatus = "dispatched" // truck and driver assigned, OTP issued
	StatusDelivered  OrderStatus = "delivered"  // reconciled against the delivery OTP
	StatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a known lifecycle state.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusRequested, StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentStatus tracks whether payment for an order has been confirmed.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
)

// Unit discriminates cement quantities.
type Unit string

const (
	UnitTons Unit = "tons"
	UnitBags Unit = "bags"
)

// Order represents a cement sales order moving through the haulage pipeline.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	CementType    string          `json:"cement_type" db:"cement_type"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	Unit          Unit            `json:"unit" db:"unit"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	TruckID       *uuid.UUID      `json:"truck_id,omitempty" db:"truck_id"`
	DriverID      *uuid.UUID      `json:"driver_id,omitempty" db:"driver_id"`
	DeliveryOTP   *string         `json:"-" db:"delivery_otp"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	WaybillNumber *string         `json:"waybill_number,omitempty" db:"waybill_number"`
	DispatchedAt  *time.Time      `json:"dispatched_at,omitempty" db:"dispatched_at"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderWithDetails includes joined data for display. The display strings are
// derived at read time, never stored.
type OrderWithDetails struct {
	Order
	CustomerName       string  `json:"customer_name" db:"customer_name"`
	TruckPlate         *string `json:"truck_plate,omitempty" db:"truck_plate"`
	DriverName         *string `json:"driver_name,omitempty" db:"driver_name"`
	TotalAmountDisplay string  `json:"total_amount_display"`
	QuantityDisplay    string  `json:"quantity_display"`
}

// PipelineCounts aggregates live order counts per status for operational visibility.
type PipelineCounts struct {
	Requested  int `json:"requested"`
	Dispatched int `json:"dispatched"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
}

// Shortage records the deficit produced by a reconciliation with missing or
// damaged quantity. Written by the reconciliation procedure; read-only here.
type Shortage struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	QtyMissing  float64         `json:"qty_missing" db:"qty_missing"`
	QtyDamaged  float64         `json:"qty_damaged" db:"qty_damaged"`
	Reason      *string         `json:"reason,omitempty" db:"reason"`
	DeductedAmt decimal.Decimal `json:"deducted_amount" db:"deducted_amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
