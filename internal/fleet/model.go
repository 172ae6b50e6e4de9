package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Truck represents a haulage vehicle.
type Truck struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	PlateNumber  string     `json:"plate_number" db:"plate_number"`
	Model        string     `json:"model" db:"model"`
	CapacityTons float64    `json:"capacity_tons" db:"capacity_tons"`
	Active       bool       `json:"active" db:"active"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty" db:"driver_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Driver represents a truck driver and their delivery record.
type Driver struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	FullName             string    `json:"full_name" db:"full_name"`
	Phone                string    `json:"phone" db:"phone"`
	LicenseNumber        string    `json:"license_number" db:"license_number"`
	Active               bool      `json:"active" db:"active"`
	TotalDeliveries      int       `json:"total_deliveries" db:"total_deliveries"`
	SuccessfulDeliveries int       `json:"successful_deliveries" db:"successful_deliveries"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// SuccessRate returns the delivery success percentage, or nil when the driver
// has no deliveries yet.
func (d Driver) SuccessRate() *float64 {
	if d.TotalDeliveries == 0 {
		return nil
	}
	rate := float64(d.SuccessfulDeliveries) / float64(d.TotalDeliveries) * 100
	return &rate
}

// TransactionType classifies driver ledger entries.
type TransactionType string

const (
	TxShortageDeduction TransactionType = "shortage_deduction"
	TxAllowance         TransactionType = "allowance"
	TxSalaryPayment     TransactionType = "salary_payment"
	TxBonus             TransactionType = "bonus"
	TxDeposit           TransactionType = "deposit"
)

// IsValid checks the transaction type against the known set.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxShortageDeduction, TxAllowance, TxSalaryPayment, TxBonus, TxDeposit:
		return true
	default:
		return false
	}
}

// IsDeduction reports whether the entry reduces the driver's balance.
func (t TransactionType) IsDeduction() bool {
	return t == TxShortageDeduction
}

// DriverTransaction is one entry in a driver's ledger.
type DriverTransaction struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	DriverID  uuid.UUID       `json:"driver_id" db:"driver_id"`
	Type      TransactionType `json:"type" db:"type"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty" db:"order_id"`
	Note      *string         `json:"note,omitempty" db:"note"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// DriverWithRate decorates a driver with the derived success rate for display.
type DriverWithRate struct {
	Driver
	SuccessRatePct *float64 `json:"success_rate_pct,omitempty"`
}
