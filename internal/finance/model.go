package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is money received from a customer, usually against an order.
type Payment struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  *string         `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ExpenseCategory buckets operating costs for the profitability views.
type ExpenseCategory string

const (
	ExpenseFuel        ExpenseCategory = "fuel"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseTolls       ExpenseCategory = "tolls"
	ExpenseLoading     ExpenseCategory = "loading"
	ExpenseOther       ExpenseCategory = "other"
)

// IsValid reports whether c is a known expense category.
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseFuel, ExpenseMaintenance, ExpenseTolls, ExpenseLoading, ExpenseOther:
		return true
	}
	return false
}

// Expense is an operating cost, optionally tied to a trip.
type Expense struct {
	ID         uuid.UUID       `json:"id"`
	Category   ExpenseCategory `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	Note       *string         `json:"note,omitempty"`
	IncurredAt time.Time       `json:"incurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HaulagePayment is a freight charge collected for hauling on behalf of a
// customer, the second revenue stream next to cement trading.
type HaulagePayment struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// CementPayment is money sent to the manufacturer for cement. Prepayments
// accrue units into the matching manufacturer wallet.
type CementPayment struct {
	ID         uuid.UUID       `json:"id"`
	Supplier   string          `json:"supplier"`
	CementType string          `json:"cement_type"`
	Amount     decimal.Decimal `json:"amount"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	Prepayment bool            `json:"prepayment"`
	PaidAt     time.Time       `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Wallet is a prepaid cement balance held against one (supplier, cement type) pair.
type Wallet struct {
	ID         uuid.UUID       `json:"id"`
	Supplier   string          `json:"supplier"`
	CementType string          `json:"cement_type"`
	Balance    decimal.Decimal `json:"balance"`
	Unit       string          `json:"unit"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// WalletTransactionType discriminates wallet movements.
type WalletTransactionType string

const (
	WalletDeposit    WalletTransactionType = "deposit"
	WalletWithdrawal WalletTransactionType = "withdrawal"
)

// WalletTransaction is a single wallet movement, linked to the payment that
// funded it when the movement is a deposit.
type WalletTransaction struct {
	ID        uuid.UUID             `json:"id"`
	WalletID  uuid.UUID             `json:"wallet_id"`
	Type      WalletTransactionType `json:"type"`
	Quantity  decimal.Decimal       `json:"quantity"`
	PaymentID *uuid.UUID            `json:"payment_id,omitempty"`
	Note      *string               `json:"note,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
