package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// mockRepository holds orders in memory and simulates the reconciliation procedure.
type mockRepository struct {
	orders          map[uuid.UUID]*Order
	reconcileResult ReconcileResult
	reconcileErr    error
	reconcileCalls  int
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[uuid.UUID]*Order)}
}

func (m *mockRepository) add(o Order) uuid.UUID {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.orders[o.ID] = &o
	return o.ID
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	var out []OrderWithDetails
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, OrderWithDetails{Order: *o})
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, o Order) (uuid.UUID, error) {
	return m.add(o), nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if _, ok := m.orders[id]; !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["cement_type"]; ok {
		m.orders[id].CementType = v.(string)
	}
	if v, ok := updates["quantity"]; ok {
		m.orders[id].Quantity = v.(float64)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (m *mockRepository) Dispatch(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID, otp, waybill string) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusRequested {
		return shared.ErrInvalidStatus
	}
	o.TruckID = &truckID
	o.DriverID = &driverID
	o.DeliveryOTP = &otp
	o.WaybillNumber = &waybill
	o.Status = StatusDispatched
	return nil
}

func (m *mockRepository) Reassign(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusDispatched {
		return shared.ErrInvalidStatus
	}
	o.TruckID = &truckID
	o.DriverID = &driverID
	return nil
}

func (m *mockRepository) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	o, ok := m.orders[id]
	if !ok || o.Status.IsTerminal() {
		return shared.ErrInvalidStatus
	}
	o.Status = StatusCancelled
	return nil
}

func (m *mockRepository) StatusCounts(ctx context.Context) (PipelineCounts, error) {
	var counts PipelineCounts
	for _, o := range m.orders {
		switch o.Status {
		case StatusRequested:
			counts.Requested++
		case StatusDispatched:
			counts.Dispatched++
		case StatusDelivered:
			counts.Delivered++
		case StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

func (m *mockRepository) CallReconciliation(ctx context.Context, p ReconciliationParams) (ReconcileResult, error) {
	m.reconcileCalls++
	if m.reconcileErr != nil {
		return ReconcileResult{}, m.reconcileErr
	}
	if m.reconcileResult.Success {
		if o, ok := m.orders[p.OrderID]; ok {
			o.Status = StatusDelivered
		}
	}
	return m.reconcileResult, nil
}

func (m *mockRepository) ListShortages(ctx context.Context, orderID *uuid.UUID, limit, offset int) ([]Shortage, int, error) {
	return nil, 0, nil
}

func (m *mockRepository) GenerateWaybill(ctx context.Context, date time.Time) (string, error) {
	return "WB-2608-0001", nil
}

type stubFleet struct {
	truckActive  bool
	driverActive bool
}

func (f stubFleet) TruckActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.truckActive, nil
}

func (f stubFleet) DriverActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.driverActive, nil
}

func newTestService() (*Service, *mockRepository, *mockCache) {
	repo := newMockRepository()
	c := newMockCache()
	svc := NewService(repo, c, stubFleet{truckActive: true, driverActive: true}, nil)
	return svc, repo, c
}

func TestConfirmPaymentLeavesStatusUnchanged(t *testing.T) {
	svc, repo, _ := newTestService()
	id := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentPending})

	order, err := svc.ConfirmPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, PaymentConfirmed, order.PaymentStatus)
	assert.Equal(t, StatusRequested, order.Status)
}

func TestConfirmPaymentRejectedWhenAlreadyConfirmed(t *testing.T) {
	svc, repo, _ := newTestService()
	id := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed})

	_, err := svc.ConfirmPayment(context.Background(), id)
	assert.ErrorIs(t, err, ErrGuardFailed)
}

func TestDispatchIssuesOTPAndWaybill(t *testing.T) {
	svc, repo, c := newTestService()
	id := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed})

	result, err := svc.Dispatch(context.Background(), id, DispatchRequest{
		TruckID: uuid.New(), DriverID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Len(t, result.OTP, 6)
	assert.Equal(t, "WB-2608-0001", result.Waybill)
	assert.Equal(t, StatusDispatched, result.Order.Status)
	assert.NotNil(t, result.Order.TruckID)
	assert.Contains(t, c.invalidated, "orders")
}

func TestDispatchRejectedWithoutPaymentConfirmation(t *testing.T) {
	svc, repo, _ := newTestService()
	id := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentPending})

	_, err := svc.Dispatch(context.Background(), id, DispatchRequest{TruckID: uuid.New(), DriverID: uuid.New()})
	assert.ErrorIs(t, err, ErrGuardFailed)
}

func TestDispatchRejectedForInactiveTruck(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, newMockCache(), stubFleet{truckActive: false, driverActive: true}, nil)
	id := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed})

	_, err := svc.Dispatch(context.Background(), id, DispatchRequest{TruckID: uuid.New(), DriverID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReassignOnlyWhileDispatched(t *testing.T) {
	svc, repo, _ := newTestService()
	requested := repo.add(Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed})
	dispatched := repo.add(Order{Status: StatusDispatched, DeliveryOTP: strptr("111222")})

	_, err := svc.Reassign(context.Background(), requested, ReassignRequest{TruckID: uuid.New(), DriverID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Reassign(context.Background(), dispatched, ReassignRequest{TruckID: uuid.New(), DriverID: uuid.New()})
	assert.NoError(t, err)
}

func TestEditAndDeleteOnlyWhileRequested(t *testing.T) {
	svc, repo, _ := newTestService()
	dispatched := repo.add(Order{Status: StatusDispatched})

	qty := 200.0
	_, err := svc.Update(context.Background(), dispatched, UpdateOrderRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = svc.Delete(context.Background(), dispatched)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReconcileRejectsNonDispatchedOrders(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	for _, status := range []OrderStatus{StatusRequested, StatusDelivered, StatusCancelled} {
		id := repo.add(Order{Status: status, DeliveryOTP: strptr("123456")})
		_, err := svc.Reconcile(ctx, id, ReconcileRequest{OTP: "123456", QtyGood: 100})
		require.Error(t, err, "reconcile must never silently succeed for %s", status)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Zero(t, repo.reconcileCalls, "procedure must not be invoked for ineligible orders")
}

func TestReconcileOTPMismatchLeavesOrderUnchanged(t *testing.T) {
	svc, repo, c := newTestService()
	id := repo.add(Order{Status: StatusDispatched, DeliveryOTP: strptr("123456")})
	repo.reconcileResult = ReconcileResult{Success: false, Message: "Invalid OTP code"}

	res, err := svc.Reconcile(context.Background(), id, ReconcileRequest{OTP: "999999", QtyGood: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReconciliationRejected)
	assert.Contains(t, err.Error(), "Invalid OTP code")
	assert.False(t, res.Success)

	order, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, order.Status, "status must be unchanged on rejection")
	assert.Empty(t, c.invalidated, "no cache bucket may be invalidated on rejection")
}

func TestReconcileSuccessInvalidatesExactlyThreeBuckets(t *testing.T) {
	svc, repo, c := newTestService()
	id := repo.add(Order{Status: StatusDispatched, DeliveryOTP: strptr("123456")})
	repo.reconcileResult = ReconcileResult{Success: true, Message: "Delivery reconciled"}

	res, err := svc.Reconcile(context.Background(), id, ReconcileRequest{
		OTP: "123456", QtyGood: 95, QtyMissing: 3, QtyDamaged: 2,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.ElementsMatch(t,
		[]string{"orders", "shortages", "driver_transactions"},
		c.invalidated,
		"exactly one invalidation per affected bucket")

	order, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestReconcileAlreadyDeliveredDoesNotDoubleApply(t *testing.T) {
	svc, repo, _ := newTestService()
	id := repo.add(Order{Status: StatusDispatched, DeliveryOTP: strptr("123456")})
	repo.reconcileResult = ReconcileResult{Success: true, Message: "Delivery reconciled"}

	_, err := svc.Reconcile(context.Background(), id, ReconcileRequest{OTP: "123456", QtyGood: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reconcileCalls)

	_, err = svc.Reconcile(context.Background(), id, ReconcileRequest{OTP: "123456", QtyGood: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, repo.reconcileCalls, "procedure must not run a second time")
}

func TestReconcileRejectsNegativeQuantities(t *testing.T) {
	svc, repo, _ := newTestService()
	id := repo.add(Order{Status: StatusDispatched, DeliveryOTP: strptr("123456")})

	_, err := svc.Reconcile(context.Background(), id, ReconcileRequest{OTP: "123456", QtyGood: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Zero(t, repo.reconcileCalls)
}

func TestCreateOrderDefaults(t *testing.T) {
	svc, _, c := newTestService()

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID:  uuid.New(),
		CementType:  "42.5R",
		Quantity:    600,
		Unit:        UnitBags,
		TotalAmount: decimal.NewFromInt(3_900_000),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Contains(t, c.invalidated, "orders")
}

func TestListDecoratesDisplayFields(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(Order{
		Status:      StatusRequested,
		CementType:  "42.5R",
		Quantity:    600,
		Unit:        UnitBags,
		TotalAmount: decimal.NewFromInt(1_250_000),
	})

	resp, err := svc.List(context.Background(), ListOrdersRequest{Limit: 50})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "₦1,250,000.00", resp.Orders[0].TotalAmountDisplay)
	assert.Equal(t, "600 bags", resp.Orders[0].QuantityDisplay)
}

func TestListCarriesPaginationMetadata(t *testing.T) {
	svc, repo, _ := newTestService()
	for i := 0; i < 5; i++ {
		repo.add(Order{Status: StatusRequested})
	}

	resp, err := svc.List(context.Background(), ListOrdersRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.PerPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestPipelineCounts(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(Order{Status: StatusRequested})
	repo.add(Order{Status: StatusRequested})
	repo.add(Order{Status: StatusDispatched})
	repo.add(Order{Status: StatusDelivered})

	counts, err := svc.Pipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PipelineCounts{Requested: 2, Dispatched: 1, Delivered: 1}, counts)
}
