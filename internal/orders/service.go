package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Mutation names declared against the cache service.
const (
	MutationCreate         = "orders.create"
	MutationUpdate         = "orders.update"
	MutationDelete         = "orders.delete"
	MutationConfirmPayment = "orders.confirm_payment"
	MutationDispatch       = "orders.dispatch"
	MutationReassign       = "orders.reassign"
	MutationCancel         = "orders.cancel"
	MutationReconcile      = "orders.reconcile"
)

// ErrReconciliationRejected carries a business rejection from the reconciliation
// procedure (OTP mismatch, order not dispatchable, quantity sum off). The user may
// retry with corrected input.
var ErrReconciliationRejected = errors.New("reconciliation rejected")

// Cache is the slice of the cache service the orders domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// FleetChecker validates fleet assignments against the fleet domain.
type FleetChecker interface {
	TruckActive(ctx context.Context, id uuid.UUID) (bool, error)
	DriverActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service provides business logic for the order pipeline.
type Service struct {
	repo   Repository
	cache  Cache
	fleet  FleetChecker
	logger *slog.Logger
}

// NewService constructs the orders service and declares its cache dependencies.
func NewService(repo Repository, c Cache, fleet FleetChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationCreate, cache.BucketOrders)
	c.Declare(MutationUpdate, cache.BucketOrders)
	c.Declare(MutationDelete, cache.BucketOrders)
	c.Declare(MutationConfirmPayment, cache.BucketOrders, cache.BucketPayments)
	c.Declare(MutationDispatch, cache.BucketOrders, cache.BucketTrucks, cache.BucketDrivers)
	c.Declare(MutationReassign, cache.BucketOrders, cache.BucketTrucks, cache.BucketDrivers)
	c.Declare(MutationCancel, cache.BucketOrders)
	c.Declare(MutationReconcile, cache.BucketOrders, cache.BucketShortages, cache.BucketDriverTransactions)
	return &Service{repo: repo, cache: c, fleet: fleet, logger: logger}
}

// Create registers a new order in the requested status with payment pending.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	order := Order{
		CustomerID:    req.CustomerID,
		CementType:    req.CementType,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		Status:        StatusRequested,
		PaymentStatus: PaymentPending,
		TotalAmount:   req.TotalAmount,
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.invalidate(ctx, MutationCreate)
	return s.repo.Get(ctx, id)
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filters, served through the cache.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) (ListOrdersResponse, error) {
	var resp ListOrdersResponse
	err := s.cache.FetchJSON(ctx, cache.BucketOrders, listKeyParts(req), &resp, func(ctx context.Context) (interface{}, error) {
		items, total, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].TotalAmountDisplay = shared.FormatNaira(items[i].TotalAmount)
			items[i].QuantityDisplay = shared.FormatQuantity(items[i].Quantity, string(items[i].Unit))
		}
		return ListOrdersResponse{
			Orders:     items,
			Total:      total,
			Limit:      req.Limit,
			Offset:     req.Offset,
			Pagination: shared.PaginationFromOffset(req.Limit, req.Offset, total),
		}, nil
	})
	return resp, err
}

// Update edits an order; only allowed while requested.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionEdit); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.CementType != nil {
		updates["cement_type"] = *req.CementType
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.TotalAmount != nil {
		updates["total_amount"] = decimalToNumeric(*req.TotalAmount)
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.invalidate(ctx, MutationUpdate)
	return s.repo.Get(ctx, id)
}

// Delete removes an order; only allowed while requested.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.invalidate(ctx, MutationDelete)
	return nil
}

// ConfirmPayment marks a pending order's payment confirmed. Status is unchanged.
func (s *Service) ConfirmPayment(ctx context.Context, id uuid.UUID) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionConfirmPayment); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, PaymentConfirmed); err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	s.invalidate(ctx, MutationConfirmPayment)
	return s.repo.Get(ctx, id)
}

// Dispatch assigns a truck and driver, issues the delivery OTP and waybill, and
// moves the order to dispatched.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID, req DispatchRequest) (*DispatchResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionDispatch); err != nil {
		return nil, err
	}
	if err := s.checkFleet(ctx, req.TruckID, req.DriverID); err != nil {
		return nil, err
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	waybill, err := s.repo.GenerateWaybill(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate waybill: %w", err)
	}

	if err := s.repo.Dispatch(ctx, id, req.TruckID, req.DriverID, otp, waybill); err != nil {
		return nil, err
	}
	s.invalidate(ctx, MutationDispatch)

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Order: order, OTP: otp, Waybill: waybill}, nil
}

// Reassign swaps the assigned fleet; only allowed while dispatched.
func (s *Service) Reassign(ctx context.Context, id uuid.UUID, req ReassignRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionReassign); err != nil {
		return nil, err
	}
	if err := s.checkFleet(ctx, req.TruckID, req.DriverID); err != nil {
		return nil, err
	}
	if err := s.repo.Reassign(ctx, id, req.TruckID, req.DriverID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, MutationReassign)
	return s.repo.Get(ctx, id)
}

// Cancel moves a non-terminal order to cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionCancel); err != nil {
		return nil, err
	}
	if err := s.repo.Cancel(ctx, id, req.Reason); err != nil {
		return nil, err
	}
	s.invalidate(ctx, MutationCancel)
	return s.repo.Get(ctx, id)
}

// Reconcile settles a dispatched order through the atomic reconciliation
// procedure. The procedure alone decides OTP match and whether the quantity
// splits sum to the ordered quantity; on success it moves the order to
// delivered, records the shortage, posts the driver deduction and issues the
// credit note as one transaction.
func (s *Service) Reconcile(ctx context.Context, id uuid.UUID, req ReconcileRequest) (ReconcileResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("get order: %w", err)
	}
	if _, err := Authorize(existing, ActionReconcile); err != nil {
		return ReconcileResult{}, err
	}
	if req.QtyGood < 0 || req.QtyMissing < 0 || req.QtyDamaged < 0 {
		return ReconcileResult{}, fmt.Errorf("%w: quantities must be non-negative", shared.ErrValidation)
	}

	res, err := s.repo.CallReconciliation(ctx, ReconciliationParams{
		OrderID:    id,
		OTP:        req.OTP,
		QtyGood:    req.QtyGood,
		QtyMissing: req.QtyMissing,
		QtyDamaged: req.QtyDamaged,
		Reason:     req.Reason,
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %s", ErrReconciliationRejected, res.Message)
	}

	s.invalidate(ctx, MutationReconcile)
	return res, nil
}

// Shortages lists shortage records, optionally filtered by order.
func (s *Service) Shortages(ctx context.Context, orderID *uuid.UUID, limit, offset int) ([]Shortage, int, error) {
	return s.repo.ListShortages(ctx, orderID, limit, offset)
}

// Pipeline returns live order counts per status, served through the cache.
func (s *Service) Pipeline(ctx context.Context) (PipelineCounts, error) {
	var counts PipelineCounts
	err := s.cache.FetchJSON(ctx, cache.BucketOrders, []string{"pipeline"}, &counts, func(ctx context.Context) (interface{}, error) {
		return s.repo.StatusCounts(ctx)
	})
	return counts, err
}

func (s *Service) checkFleet(ctx context.Context, truckID, driverID uuid.UUID) error {
	if s.fleet == nil {
		return nil
	}
	ok, err := s.fleet.TruckActive(ctx, truckID)
	if err != nil {
		return fmt.Errorf("check truck: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: truck is not active", shared.ErrValidation)
	}
	ok, err = s.fleet.DriverActive(ctx, driverID)
	if err != nil {
		return fmt.Errorf("check driver: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: driver is not active", shared.ErrValidation)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.InvalidateFor(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", mutation), slog.Any("error", err))
	}
}

func listKeyParts(req ListOrdersRequest) []string {
	parts := []string{"list"}
	if req.Status != nil {
		parts = append(parts, "status", string(*req.Status))
	}
	if req.CustomerID != nil {
		parts = append(parts, "customer", req.CustomerID.String())
	}
	if req.DateFrom != nil {
		parts = append(parts, "from", req.DateFrom.Format("2006-01-02"))
	}
	if req.DateTo != nil {
		parts = append(parts, "to", req.DateTo.Format("2006-01-02"))
	}
	parts = append(parts, "limit", strconv.Itoa(req.Limit), "offset", strconv.Itoa(req.Offset))
	return parts
}
