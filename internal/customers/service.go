package customers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
)

// MutationSave covers customer create and update.
const MutationSave = "customers.save"

// Cache is the slice of the cache service the customers domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// Service provides customer business logic.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs the customer service and declares its cache dependencies.
func NewService(repo Repository, c Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationSave, cache.BucketCustomers)
	return &Service{repo: repo, cache: c, logger: logger}
}

// Get returns a single customer.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers, served through the cache.
func (s *Service) List(ctx context.Context, search string, limit, offset int) (ListCustomersResponse, error) {
	parts := []string{"list", search, fmt.Sprint(limit), fmt.Sprint(offset)}
	var resp ListCustomersResponse
	err := s.cache.FetchJSON(ctx, cache.BucketCustomers, parts, &resp, func(ctx context.Context) (interface{}, error) {
		customers, total, err := s.repo.List(ctx, search, limit, offset)
		if err != nil {
			return nil, err
		}
		return ListCustomersResponse{Customers: customers, Total: total}, nil
	})
	return resp, err
}

// Create registers an active customer.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	id, err := s.repo.Create(ctx, Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update edits a customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*Customer, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update customer: %w", err)
		}
		s.invalidate(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Summary returns the customer's account position, served through the cache.
// Billed totals move with orders and payments, so the summary key lives in the
// customers bucket but carries a short freshness window like every other read.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*AccountSummary, error) {
	parts := []string{"summary", id.String()}
	var out AccountSummary
	err := s.cache.FetchJSON(ctx, cache.BucketCustomers, parts, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.Summary(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateFor(ctx, MutationSave); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", MutationSave), slog.Any("error", err))
	}
}
