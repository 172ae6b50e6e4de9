package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// mockCache records bucket invalidations and passes loaders straight through.
type mockCache struct {
	declared    map[string][]string
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{declared: make(map[string][]string)}
}

func (m *mockCache) Declare(mutation string, buckets ...string) {
	m.declared[mutation] = buckets
}

func (m *mockCache) InvalidateFor(ctx context.Context, mutation string) error {
	buckets, ok := m.declared[mutation]
	if !ok {
		return fmt.Errorf("undeclared mutation %s", mutation)
	}
	m.invalidated = append(m.invalidated, buckets...)
	return nil
}

func (m *mockCache) FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// mockRepository holds finance records in memory with injectable wallet failures.
type mockRepository struct {
	payments       map[uuid.UUID]*Payment
	cementPayments map[uuid.UUID]*CementPayment
	wallets        map[uuid.UUID]*Wallet
	walletTxs      []WalletTransaction

	createWalletErr error
	depositErr      error
	deleteCalls     int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		payments:       make(map[uuid.UUID]*Payment),
		cementPayments: make(map[uuid.UUID]*CementPayment),
		wallets:        make(map[uuid.UUID]*Wallet),
	}
}

func (m *mockRepository) InsertPayment(ctx context.Context, p Payment) (uuid.UUID, error) {
	p.ID = uuid.New()
	m.payments[p.ID] = &p
	return p.ID, nil
}

func (m *mockRepository) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) ListPayments(ctx context.Context, customerID *uuid.UUID, limit, offset int) ([]Payment, int, error) {
	var out []Payment
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) InsertExpense(ctx context.Context, e Expense) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockRepository) ListExpenses(ctx context.Context, category string, limit, offset int) ([]Expense, int, error) {
	return nil, 0, nil
}

func (m *mockRepository) InsertHaulagePayment(ctx context.Context, p HaulagePayment) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockRepository) ListHaulagePayments(ctx context.Context, orderID *uuid.UUID) ([]HaulagePayment, error) {
	return nil, nil
}

func (m *mockRepository) InsertCementPayment(ctx context.Context, p CementPayment) (uuid.UUID, error) {
	p.ID = uuid.New()
	m.cementPayments[p.ID] = &p
	return p.ID, nil
}

func (m *mockRepository) DeleteCementPayment(ctx context.Context, id uuid.UUID) error {
	m.deleteCalls++
	if _, ok := m.cementPayments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.cementPayments, id)
	return nil
}

func (m *mockRepository) ListCementPayments(ctx context.Context, supplier string) ([]CementPayment, error) {
	var out []CementPayment
	for _, p := range m.cementPayments {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepository) FindWallet(ctx context.Context, supplier, cementType string) (*Wallet, error) {
	for _, w := range m.wallets {
		if w.Supplier == supplier && w.CementType == cementType {
			cp := *w
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) GetWallet(ctx context.Context, id uuid.UUID) (*Wallet, error) {
	w, ok := m.wallets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *mockRepository) CreateWallet(ctx context.Context, w Wallet) (uuid.UUID, error) {
	if m.createWalletErr != nil {
		return uuid.Nil, m.createWalletErr
	}
	w.ID = uuid.New()
	m.wallets[w.ID] = &w
	return w.ID, nil
}

func (m *mockRepository) Deposit(ctx context.Context, walletID uuid.UUID, qty decimal.Decimal, paymentID *uuid.UUID) (*WalletTransaction, error) {
	if m.depositErr != nil {
		return nil, m.depositErr
	}
	w, ok := m.wallets[walletID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	w.Balance = w.Balance.Add(qty)
	tx := WalletTransaction{ID: uuid.New(), WalletID: walletID, Type: WalletDeposit, Quantity: qty, PaymentID: paymentID}
	m.walletTxs = append(m.walletTxs, tx)
	return &tx, nil
}

func (m *mockRepository) ListWallets(ctx context.Context) ([]Wallet, error) {
	var out []Wallet
	for _, w := range m.wallets {
		out = append(out, *w)
	}
	return out, nil
}

func (m *mockRepository) ListWalletTransactions(ctx context.Context, walletID uuid.UUID) ([]WalletTransaction, error) {
	var out []WalletTransaction
	for _, tx := range m.walletTxs {
		if tx.WalletID == walletID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type stubOrders struct {
	confirmed []uuid.UUID
	err       error
}

func (s *stubOrders) ConfirmPayment(ctx context.Context, orderID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.confirmed = append(s.confirmed, orderID)
	return nil
}

func newTestService(repo *mockRepository) (*Service, *mockCache, *stubOrders) {
	c := newMockCache()
	o := &stubOrders{}
	return NewService(repo, c, o, nil), c, o
}

func prepayment(qty int64) RecordCementPaymentRequest {
	return RecordCementPaymentRequest{
		Supplier:   "Dangote",
		CementType: "42.5R",
		Amount:     decimal.NewFromInt(qty * 5000),
		Quantity:   decimal.NewFromInt(qty),
		Prepayment: true,
	}
}

func TestFirstPrepaymentCreatesWallet(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	result, err := svc.RecordCementPayment(context.Background(), prepayment(500))
	require.NoError(t, err)
	require.NotNil(t, result.Wallet)

	assert.Equal(t, "Dangote", result.Wallet.Supplier)
	assert.Equal(t, "42.5R", result.Wallet.CementType)
	assert.Equal(t, DefaultWalletUnit, result.Wallet.Unit)
	assert.True(t, result.Wallet.Balance.Equal(decimal.NewFromInt(500)),
		"balance should come from the deposit alone, got %s", result.Wallet.Balance)
	require.Len(t, repo.walletTxs, 1)
	assert.True(t, repo.walletTxs[0].Quantity.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, &result.Payment.ID, repo.walletTxs[0].PaymentID)
}

func TestSecondPrepaymentDepositsIntoExistingWallet(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	_, err := svc.RecordCementPayment(context.Background(), prepayment(500))
	require.NoError(t, err)

	result, err := svc.RecordCementPayment(context.Background(), prepayment(200))
	require.NoError(t, err)

	assert.Len(t, repo.wallets, 1)
	assert.True(t, result.Wallet.Balance.Equal(decimal.NewFromInt(700)))
	require.Len(t, repo.walletTxs, 2)
	assert.True(t, repo.walletTxs[1].Quantity.Equal(decimal.NewFromInt(200)),
		"second deposit should carry only the new quantity")
}

func TestWalletStepFailureDeletesPayment(t *testing.T) {
	repo := newMockRepository()
	repo.depositErr = errors.New("connection reset")
	svc, c, _ := newTestService(repo)

	_, err := svc.RecordCementPayment(context.Background(), prepayment(300))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWalletAccrual)

	assert.Empty(t, repo.cementPayments, "payment should be compensated away")
	assert.Equal(t, 1, repo.deleteCalls)
	assert.Empty(t, c.invalidated, "no buckets should be invalidated on rollback")
}

func TestWalletCreateFailureDeletesPayment(t *testing.T) {
	repo := newMockRepository()
	repo.createWalletErr = errors.New("unique violation")
	svc, _, _ := newTestService(repo)

	_, err := svc.RecordCementPayment(context.Background(), prepayment(100))
	require.ErrorIs(t, err, ErrWalletAccrual)
	assert.Empty(t, repo.cementPayments)
	assert.Empty(t, repo.wallets)
}

func TestNonPrepaymentSkipsWallet(t *testing.T) {
	repo := newMockRepository()
	svc, c, _ := newTestService(repo)

	result, err := svc.RecordCementPayment(context.Background(), RecordCementPaymentRequest{
		Supplier:   "Dangote",
		CementType: "42.5R",
		Amount:     decimal.NewFromInt(1000000),
		Quantity:   decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	assert.Nil(t, result.Wallet)
	assert.Empty(t, repo.wallets)
	assert.Contains(t, c.invalidated, cache.BucketCementPayments)
}

func TestCementPaymentInvalidatesWalletBuckets(t *testing.T) {
	repo := newMockRepository()
	svc, c, _ := newTestService(repo)

	_, err := svc.RecordCementPayment(context.Background(), prepayment(50))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		cache.BucketCementPayments,
		cache.BucketWallets,
		cache.BucketWalletTransactions,
	}, c.invalidated)
}

func TestRecordPaymentConfirmsOrder(t *testing.T) {
	repo := newMockRepository()
	svc, _, orders := newTestService(repo)

	orderID := uuid.New()
	payment, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		CustomerID: uuid.New(),
		OrderID:    &orderID,
		Amount:     decimal.NewFromInt(250000),
		Method:     "transfer",
		Confirm:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, []uuid.UUID{orderID}, orders.confirmed)
}

func TestRecordPaymentConfirmFailureStillInvalidatesBuckets(t *testing.T) {
	repo := newMockRepository()
	svc, c, orders := newTestService(repo)
	orders.err = errors.New("order not found")

	orderID := uuid.New()
	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		CustomerID: uuid.New(),
		OrderID:    &orderID,
		Amount:     decimal.NewFromInt(250000),
		Method:     "transfer",
		Confirm:    true,
	})
	require.Error(t, err)

	assert.Len(t, repo.payments, 1, "the payment row outlives the failed confirm")
	assert.Contains(t, c.invalidated, cache.BucketPayments,
		"stale payment listings must be flushed even when the confirm step fails")
}

func TestListPaymentsCarriesPaginationMetadata(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			CustomerID: uuid.New(),
			Amount:     decimal.NewFromInt(10000),
			Method:     "cash",
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListPayments(context.Background(), nil, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.PerPage)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		CustomerID: uuid.New(),
		Amount:     decimal.Zero,
		Method:     "cash",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPrepaymentRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	req := prepayment(100)
	req.Quantity = decimal.Zero
	_, err := svc.RecordCementPayment(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.cementPayments)
}
