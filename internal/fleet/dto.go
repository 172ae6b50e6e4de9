package fleet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTruckRequest registers a truck.
type CreateTruckRequest struct {
	PlateNumber  string     `json:"plate_number" validate:"required,max=20"`
	Model        string     `json:"model" validate:"required,max=100"`
	CapacityTons float64    `json:"capacity_tons" validate:"required,gt=0"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty"`
}

// UpdateTruckRequest edits a truck.
type UpdateTruckRequest struct {
	Model        *string    `json:"model,omitempty" validate:"omitempty,max=100"`
	CapacityTons *float64   `json:"capacity_tons,omitempty" validate:"omitempty,gt=0"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty"`
	Active       *bool      `json:"active,omitempty"`
}

// CreateDriverRequest registers a driver.
type CreateDriverRequest struct {
	FullName      string `json:"full_name" validate:"required,max=200"`
	Phone         string `json:"phone" validate:"required,max=20"`
	LicenseNumber string `json:"license_number" validate:"required,max=50"`
}

// UpdateDriverRequest edits a driver.
type UpdateDriverRequest struct {
	FullName      *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	LicenseNumber *string `json:"license_number,omitempty" validate:"omitempty,max=50"`
	Active        *bool   `json:"active,omitempty"`
}

// PostLedgerRequest records a manual driver ledger entry. Shortage deductions are
// written only by the reconciliation procedure, never through this endpoint.
type PostLedgerRequest struct {
	Type    TransactionType `json:"type" validate:"required,oneof=allowance salary_payment bonus deposit"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	OrderID *uuid.UUID      `json:"order_id,omitempty"`
	Note    *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// LedgerResponse returns a driver's ledger page with the running balance.
type LedgerResponse struct {
	Transactions []DriverTransaction `json:"transactions"`
	Balance      decimal.Decimal     `json:"balance"`
	Total        int                 `json:"total"`
}
