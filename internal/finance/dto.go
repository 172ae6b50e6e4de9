package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// RecordPaymentRequest records a customer payment. When order_id is set and
// confirm is true, the order's payment status is confirmed in the same call.
type RecordPaymentRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Method     string          `json:"method" validate:"required,oneof=cash transfer cheque pos"`
	Reference  *string         `json:"reference,omitempty" validate:"omitempty,max=100"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Confirm    bool            `json:"confirm"`
}

// RecordExpenseRequest records an operating cost.
type RecordExpenseRequest struct {
	Category   ExpenseCategory `json:"category" validate:"required,oneof=fuel maintenance tolls loading other"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	Note       *string         `json:"note,omitempty" validate:"omitempty,max=500"`
	IncurredAt *time.Time      `json:"incurred_at,omitempty"`
}

// RecordHaulagePaymentRequest records a freight charge against an order.
type RecordHaulagePaymentRequest struct {
	OrderID   uuid.UUID       `json:"order_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference *string         `json:"reference,omitempty" validate:"omitempty,max=100"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// RecordCementPaymentRequest records a payment to the manufacturer. Prepayments
// carry the purchased quantity, which accrues into the supplier wallet.
type RecordCementPaymentRequest struct {
	Supplier   string          `json:"supplier" validate:"required,max=100"`
	CementType string          `json:"cement_type" validate:"required,max=100"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	Unit       string          `json:"unit" validate:"omitempty,oneof=tons bags"`
	Prepayment bool            `json:"prepayment"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// CementPaymentResult returns the recorded payment with the wallet position
// after any accrual.
type CementPaymentResult struct {
	Payment CementPayment `json:"payment"`
	Wallet  *Wallet       `json:"wallet,omitempty"`
}

// ListPaymentsResponse wraps a payment listing.
type ListPaymentsResponse struct {
	Payments   []Payment         `json:"payments"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}

// ListExpensesResponse wraps an expense listing.
type ListExpensesResponse struct {
	Expenses   []Expense         `json:"expenses"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}

// WalletStatement returns a wallet with its movement history.
type WalletStatement struct {
	Wallet       Wallet              `json:"wallet"`
	Transactions []WalletTransaction `json:"transactions"`
}
