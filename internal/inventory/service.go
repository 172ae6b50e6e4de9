package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
)

// Mutation names declared against the cache service.
const (
	MutationDepotSave   = "inventory.depot_save"
	MutationStockAdjust = "inventory.stock_adjust"
)

// Cache is the slice of the cache service the inventory domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// Service provides depot and stock business logic.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs the inventory service and declares its cache dependencies.
func NewService(repo Repository, c Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationDepotSave, cache.BucketDepots)
	c.Declare(MutationStockAdjust, cache.BucketInventory)
	return &Service{repo: repo, cache: c, logger: logger}
}

// ListDepots returns depots, served through the cache.
func (s *Service) ListDepots(ctx context.Context, activeOnly bool) ([]Depot, error) {
	parts := []string{"list"}
	if activeOnly {
		parts = append(parts, "active")
	}
	var out []Depot
	err := s.cache.FetchJSON(ctx, cache.BucketDepots, parts, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListDepots(ctx, activeOnly)
	})
	return out, err
}

// CreateDepot registers an active depot.
func (s *Service) CreateDepot(ctx context.Context, req CreateDepotRequest) (*Depot, error) {
	id, err := s.repo.CreateDepot(ctx, Depot{Name: req.Name, Location: req.Location, Active: true})
	if err != nil {
		return nil, fmt.Errorf("create depot: %w", err)
	}
	s.invalidate(ctx, MutationDepotSave)
	return s.repo.GetDepot(ctx, id)
}

// UpdateDepot edits a depot.
func (s *Service) UpdateDepot(ctx context.Context, id uuid.UUID, req UpdateDepotRequest) (*Depot, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateDepot(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update depot: %w", err)
		}
		s.invalidate(ctx, MutationDepotSave)
	}
	return s.repo.GetDepot(ctx, id)
}

// ListStock returns stock rows, optionally filtered by depot, served through the cache.
func (s *Service) ListStock(ctx context.Context, depotID *uuid.UUID) (ListStockResponse, error) {
	parts := []string{"stock"}
	if depotID != nil {
		parts = append(parts, depotID.String())
	}
	var resp ListStockResponse
	err := s.cache.FetchJSON(ctx, cache.BucketInventory, parts, &resp, func(ctx context.Context) (interface{}, error) {
		stock, err := s.repo.ListStock(ctx, depotID)
		if err != nil {
			return nil, err
		}
		return ListStockResponse{Stock: stock}, nil
	})
	return resp, err
}

// Adjust applies a receive or issue movement against a depot's stock.
func (s *Service) Adjust(ctx context.Context, req AdjustStockRequest) (*StockRow, error) {
	if _, err := s.repo.GetDepot(ctx, req.DepotID); err != nil {
		return nil, fmt.Errorf("get depot: %w", err)
	}

	delta := req.Quantity
	if req.Direction == AdjustIssue {
		delta = -delta
	}
	row, err := s.repo.AdjustStock(ctx, req.DepotID, req.CementType, req.Unit, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	s.invalidate(ctx, MutationStockAdjust)
	return row, nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.InvalidateFor(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", mutation), slog.Any("error", err))
	}
}
