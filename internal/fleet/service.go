package fleet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Mutation names declared against the cache service.
const (
	MutationTruckSave  = "fleet.truck_save"
	MutationDriverSave = "fleet.driver_save"
	MutationLedgerPost = "fleet.ledger_post"
)

// Cache is the slice of the cache service the fleet domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// Service provides business logic for fleet management.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs the fleet service and declares its cache dependencies.
func NewService(repo Repository, c Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationTruckSave, cache.BucketTrucks)
	c.Declare(MutationDriverSave, cache.BucketDrivers)
	c.Declare(MutationLedgerPost, cache.BucketDriverTransactions, cache.BucketDrivers)
	return &Service{repo: repo, cache: c, logger: logger}
}

// TruckActive reports whether the truck exists and is active.
func (s *Service) TruckActive(ctx context.Context, id uuid.UUID) (bool, error) {
	t, err := s.repo.GetTruck(ctx, id)
	if err != nil {
		return false, err
	}
	return t.Active, nil
}

// DriverActive reports whether the driver exists and is active.
func (s *Service) DriverActive(ctx context.Context, id uuid.UUID) (bool, error) {
	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return false, err
	}
	return d.Active, nil
}

// CreateTruck registers an active truck.
func (s *Service) CreateTruck(ctx context.Context, req CreateTruckRequest) (*Truck, error) {
	id, err := s.repo.CreateTruck(ctx, Truck{
		PlateNumber:  req.PlateNumber,
		Model:        req.Model,
		CapacityTons: req.CapacityTons,
		Active:       true,
		DriverID:     req.DriverID,
	})
	if err != nil {
		return nil, fmt.Errorf("create truck: %w", err)
	}
	s.invalidate(ctx, MutationTruckSave)
	return s.repo.GetTruck(ctx, id)
}

// UpdateTruck edits a truck.
func (s *Service) UpdateTruck(ctx context.Context, id uuid.UUID, req UpdateTruckRequest) (*Truck, error) {
	updates := make(map[string]interface{})
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.CapacityTons != nil {
		updates["capacity_tons"] = *req.CapacityTons
	}
	if req.DriverID != nil {
		updates["driver_id"] = *req.DriverID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateTruck(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update truck: %w", err)
		}
		s.invalidate(ctx, MutationTruckSave)
	}
	return s.repo.GetTruck(ctx, id)
}

// ListTrucks returns trucks, served through the cache.
func (s *Service) ListTrucks(ctx context.Context, activeOnly bool) ([]Truck, error) {
	parts := []string{"list"}
	if activeOnly {
		parts = append(parts, "active")
	}
	var out []Truck
	err := s.cache.FetchJSON(ctx, cache.BucketTrucks, parts, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListTrucks(ctx, activeOnly)
	})
	return out, err
}

// CreateDriver registers an active driver.
func (s *Service) CreateDriver(ctx context.Context, req CreateDriverRequest) (*Driver, error) {
	id, err := s.repo.CreateDriver(ctx, Driver{
		FullName:      req.FullName,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Active:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	s.invalidate(ctx, MutationDriverSave)
	return s.repo.GetDriver(ctx, id)
}

// UpdateDriver edits a driver.
func (s *Service) UpdateDriver(ctx context.Context, id uuid.UUID, req UpdateDriverRequest) (*Driver, error) {
	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.LicenseNumber != nil {
		updates["license_number"] = *req.LicenseNumber
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateDriver(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update driver: %w", err)
		}
		s.invalidate(ctx, MutationDriverSave)
	}
	return s.repo.GetDriver(ctx, id)
}

// GetDriver returns a driver decorated with the derived success rate.
func (s *Service) GetDriver(ctx context.Context, id uuid.UUID) (*DriverWithRate, error) {
	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DriverWithRate{Driver: *d, SuccessRatePct: d.SuccessRate()}, nil
}

// ListDrivers returns drivers with derived rates, served through the cache.
func (s *Service) ListDrivers(ctx context.Context, activeOnly bool) ([]DriverWithRate, error) {
	parts := []string{"list"}
	if activeOnly {
		parts = append(parts, "active")
	}
	var out []DriverWithRate
	err := s.cache.FetchJSON(ctx, cache.BucketDrivers, parts, &out, func(ctx context.Context) (interface{}, error) {
		drivers, err := s.repo.ListDrivers(ctx, activeOnly)
		if err != nil {
			return nil, err
		}
		decorated := make([]DriverWithRate, 0, len(drivers))
		for _, d := range drivers {
			decorated = append(decorated, DriverWithRate{Driver: d, SuccessRatePct: d.SuccessRate()})
		}
		return decorated, nil
	})
	return out, err
}

// PostLedger records a manual ledger entry against a driver.
func (s *Service) PostLedger(ctx context.Context, driverID uuid.UUID, req PostLedgerRequest) (*DriverTransaction, error) {
	if !req.Type.IsValid() || req.Type == TxShortageDeduction {
		return nil, fmt.Errorf("%w: transaction type %s cannot be posted manually", shared.ErrValidation, req.Type)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if _, err := s.repo.GetDriver(ctx, driverID); err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}

	tx := DriverTransaction{
		DriverID: driverID,
		Type:     req.Type,
		Amount:   req.Amount,
		OrderID:  req.OrderID,
		Note:     req.Note,
	}
	id, err := s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	tx.ID = id
	s.invalidate(ctx, MutationLedgerPost)
	return &tx, nil
}

// Ledger returns a driver's ledger page with the running balance, served through the cache.
func (s *Service) Ledger(ctx context.Context, driverID uuid.UUID, limit, offset int) (LedgerResponse, error) {
	parts := []string{"ledger", driverID.String(), fmt.Sprint(limit), fmt.Sprint(offset)}
	var resp LedgerResponse
	err := s.cache.FetchJSON(ctx, cache.BucketDriverTransactions, parts, &resp, func(ctx context.Context) (interface{}, error) {
		txs, total, err := s.repo.ListTransactions(ctx, driverID, limit, offset)
		if err != nil {
			return nil, err
		}
		balance, err := s.repo.LedgerBalance(ctx, driverID)
		if err != nil {
			return nil, err
		}
		return LedgerResponse{Transactions: txs, Balance: balance, Total: total}, nil
	})
	return resp, err
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.InvalidateFor(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", mutation), slog.Any("error", err))
	}
}
