package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Mutation names declared against the cache service.
const (
	MutationPaymentRecord = "finance.payment_record"
	MutationExpenseRecord = "finance.expense_record"
	MutationHaulageRecord = "finance.haulage_record"
	MutationCementRecord  = "finance.cement_record"
)

// DefaultWalletUnit applies when a prepayment omits the unit.
const DefaultWalletUnit = "bags"

// ErrWalletAccrual marks a prepayment whose wallet step failed and was rolled
// back. The payment no longer exists; the caller may retry the whole call.
var ErrWalletAccrual = errors.New("wallet accrual failed, payment rolled back")

// Cache is the slice of the cache service the finance domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// OrderPayments is the slice of the orders service finance drives when a
// customer payment confirms an order.
type OrderPayments interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) error
}

// Service provides finance business logic.
type Service struct {
	repo   Repository
	cache  Cache
	orders OrderPayments
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the finance service and declares its cache dependencies.
func NewService(repo Repository, c Cache, orders OrderPayments, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationPaymentRecord, cache.BucketPayments, cache.BucketCustomers)
	c.Declare(MutationExpenseRecord, cache.BucketExpenses)
	c.Declare(MutationHaulageRecord, cache.BucketHaulagePayments)
	c.Declare(MutationCementRecord, cache.BucketCementPayments, cache.BucketWallets, cache.BucketWalletTransactions)
	return &Service{repo: repo, cache: c, orders: orders, logger: logger, now: time.Now}
}

// RecordPayment records a customer payment and optionally confirms the order's
// payment status in the same call.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	id, err := s.repo.InsertPayment(ctx, Payment{
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		PaidAt:     paidAt,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if req.Confirm && req.OrderID != nil {
		if err := s.orders.ConfirmPayment(ctx, *req.OrderID); err != nil {
			// The payment row already exists, so stale listings must still
			// be flushed even though the call fails.
			s.invalidate(ctx, MutationPaymentRecord)
			return nil, fmt.Errorf("confirm order payment: %w", err)
		}
	}
	s.invalidate(ctx, MutationPaymentRecord)
	return s.repo.GetPayment(ctx, id)
}

// ListPayments returns payments, served through the cache.
func (s *Service) ListPayments(ctx context.Context, customerID *uuid.UUID, limit, offset int) (ListPaymentsResponse, error) {
	parts := []string{"list", fmt.Sprint(limit), fmt.Sprint(offset)}
	if customerID != nil {
		parts = append(parts, customerID.String())
	}
	var resp ListPaymentsResponse
	err := s.cache.FetchJSON(ctx, cache.BucketPayments, parts, &resp, func(ctx context.Context) (interface{}, error) {
		payments, total, err := s.repo.ListPayments(ctx, customerID, limit, offset)
		if err != nil {
			return nil, err
		}
		return ListPaymentsResponse{
			Payments:   payments,
			Total:      total,
			Pagination: shared.PaginationFromOffset(limit, offset, total),
		}, nil
	})
	return resp, err
}

// RecordExpense records an operating cost.
func (s *Service) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*Expense, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	incurredAt := s.now()
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	e := Expense{
		Category:   req.Category,
		Amount:     req.Amount,
		OrderID:    req.OrderID,
		Note:       req.Note,
		IncurredAt: incurredAt,
	}
	id, err := s.repo.InsertExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("record expense: %w", err)
	}
	e.ID = id
	s.invalidate(ctx, MutationExpenseRecord)
	return &e, nil
}

// ListExpenses returns expenses, served through the cache.
func (s *Service) ListExpenses(ctx context.Context, category string, limit, offset int) (ListExpensesResponse, error) {
	parts := []string{"list", category, fmt.Sprint(limit), fmt.Sprint(offset)}
	var resp ListExpensesResponse
	err := s.cache.FetchJSON(ctx, cache.BucketExpenses, parts, &resp, func(ctx context.Context) (interface{}, error) {
		expenses, total, err := s.repo.ListExpenses(ctx, category, limit, offset)
		if err != nil {
			return nil, err
		}
		return ListExpensesResponse{
			Expenses:   expenses,
			Total:      total,
			Pagination: shared.PaginationFromOffset(limit, offset, total),
		}, nil
	})
	return resp, err
}

// RecordHaulagePayment records a freight charge against an order.
func (s *Service) RecordHaulagePayment(ctx context.Context, req RecordHaulagePaymentRequest) (*HaulagePayment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	p := HaulagePayment{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Reference: req.Reference,
		PaidAt:    paidAt,
	}
	id, err := s.repo.InsertHaulagePayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("record haulage payment: %w", err)
	}
	p.ID = id
	s.invalidate(ctx, MutationHaulageRecord)
	return &p, nil
}

// ListHaulagePayments returns freight charges, served through the cache.
func (s *Service) ListHaulagePayments(ctx context.Context, orderID *uuid.UUID) ([]HaulagePayment, error) {
	parts := []string{"list"}
	if orderID != nil {
		parts = append(parts, orderID.String())
	}
	var out []HaulagePayment
	err := s.cache.FetchJSON(ctx, cache.BucketHaulagePayments, parts, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListHaulagePayments(ctx, orderID)
	})
	return out, err
}

// RecordCementPayment records a payment to the manufacturer. Prepayments run
// the wallet accrual: find or create the (supplier, cement_type) wallet, then
// deposit the purchased quantity. The accrual is a saga over the payment
// insert; if any wallet step fails the payment is deleted so no half-applied
// prepayment survives.
func (s *Service) RecordCementPayment(ctx context.Context, req RecordCementPaymentRequest) (*CementPaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if req.Prepayment && req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: prepayment quantity must be positive", shared.ErrValidation)
	}
	unit := req.Unit
	if unit == "" {
		unit = DefaultWalletUnit
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	p := CementPayment{
		Supplier:   req.Supplier,
		CementType: req.CementType,
		Amount:     req.Amount,
		Quantity:   req.Quantity,
		Unit:       unit,
		Prepayment: req.Prepayment,
		PaidAt:     paidAt,
	}
	id, err := s.repo.InsertCementPayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("record cement payment: %w", err)
	}
	p.ID = id

	if !p.Prepayment {
		s.invalidate(ctx, MutationCementRecord)
		return &CementPaymentResult{Payment: p}, nil
	}

	wallet, err := s.accrue(ctx, p)
	if err != nil {
		s.compensate(ctx, id)
		return nil, fmt.Errorf("%w: %v", ErrWalletAccrual, err)
	}
	s.invalidate(ctx, MutationCementRecord)
	return &CementPaymentResult{Payment: p, Wallet: wallet}, nil
}

// accrue finds or creates the wallet and deposits the purchased quantity. A
// new wallet starts at zero; the deposit carries the full increment so the
// first prepayment is never counted twice.
func (s *Service) accrue(ctx context.Context, p CementPayment) (*Wallet, error) {
	wallet, err := s.repo.FindWallet(ctx, p.Supplier, p.CementType)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		walletID, err := s.repo.CreateWallet(ctx, Wallet{
			Supplier:   p.Supplier,
			CementType: p.CementType,
			Balance:    decimal.Zero,
			Unit:       p.Unit,
		})
		if err != nil {
			return nil, fmt.Errorf("create wallet: %w", err)
		}
		wallet = &Wallet{ID: walletID}
	case err != nil:
		return nil, fmt.Errorf("find wallet: %w", err)
	}

	if _, err := s.repo.Deposit(ctx, wallet.ID, p.Quantity, &p.ID); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	return s.repo.GetWallet(ctx, wallet.ID)
}

func (s *Service) compensate(ctx context.Context, paymentID uuid.UUID) {
	if err := s.repo.DeleteCementPayment(ctx, paymentID); err != nil {
		s.logger.Error("compensating delete failed, cement payment orphaned",
			slog.String("payment_id", paymentID.String()), slog.Any("error", err))
	}
}

// ListCementPayments returns manufacturer payments, served through the cache.
func (s *Service) ListCementPayments(ctx context.Context, supplier string) ([]CementPayment, error) {
	var out []CementPayment
	err := s.cache.FetchJSON(ctx, cache.BucketCementPayments, []string{"list", supplier}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListCementPayments(ctx, supplier)
	})
	return out, err
}

// ListWallets returns supplier wallets, served through the cache.
func (s *Service) ListWallets(ctx context.Context) ([]Wallet, error) {
	var out []Wallet
	err := s.cache.FetchJSON(ctx, cache.BucketWallets, []string{"list"}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListWallets(ctx)
	})
	return out, err
}

// WalletStatement returns a wallet with its movement history, served through the cache.
func (s *Service) WalletStatement(ctx context.Context, id uuid.UUID) (*WalletStatement, error) {
	parts := []string{"statement", id.String()}
	var out WalletStatement
	err := s.cache.FetchJSON(ctx, cache.BucketWalletTransactions, parts, &out, func(ctx context.Context) (interface{}, error) {
		wallet, err := s.repo.GetWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		txs, err := s.repo.ListWalletTransactions(ctx, id)
		if err != nil {
			return nil, err
		}
		return WalletStatement{Wallet: *wallet, Transactions: txs}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.InvalidateFor(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", mutation), slog.Any("error", err))
	}
}
