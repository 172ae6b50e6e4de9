package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
)

// MutationRefresh marks a rebuild of the materialized profitability views.
const MutationRefresh = "reports.refresh"

const defaultMonths = 12

// Cache is the slice of the cache service the reports domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// Service serves the reporting views through the cache. Every read shares the
// reports bucket; the freshness window keeps dashboard refreshes cheap.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs the reports service and declares its cache dependencies.
func NewService(repo Repository, c Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationRefresh, cache.BucketReports)
	return &Service{repo: repo, cache: c, logger: logger}
}

// TripProfitability returns per-trip margins, optionally bounded by delivery date.
func (s *Service) TripProfitability(ctx context.Context, v2 bool, from, to *time.Time) ([]TripProfitability, error) {
	parts := []string{"trips", fmt.Sprint(v2)}
	if from != nil {
		parts = append(parts, from.Format("2006-01-02"))
	}
	if to != nil {
		parts = append(parts, to.Format("2006-01-02"))
	}
	var out []TripProfitability
	err := s.cache.FetchJSON(ctx, cache.BucketReports, parts, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.TripProfitability(ctx, v2, from, to)
	})
	return out, err
}

// MonthlyProfitLoss returns the month-by-month position.
func (s *Service) MonthlyProfitLoss(ctx context.Context, months int) ([]MonthlyProfitLoss, error) {
	if months <= 0 {
		months = defaultMonths
	}
	var out []MonthlyProfitLoss
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"monthly_pl", fmt.Sprint(months)}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.MonthlyProfitLoss(ctx, months)
	})
	return out, err
}

// ReceivablesAging returns the per-customer aging summary.
func (s *Service) ReceivablesAging(ctx context.Context) ([]ReceivablesAging, error) {
	var out []ReceivablesAging
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"receivables"}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ReceivablesAging(ctx)
	})
	return out, err
}

// CustomerAging returns the per-invoice aging breakdown.
func (s *Service) CustomerAging(ctx context.Context, minAgeDays int) ([]CustomerAging, error) {
	var out []CustomerAging
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"customer_aging", fmt.Sprint(minAgeDays)}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.CustomerAging(ctx, minAgeDays)
	})
	return out, err
}

// FleetAvailability returns the live truck availability board.
func (s *Service) FleetAvailability(ctx context.Context) ([]FleetAvailability, error) {
	var out []FleetAvailability
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"fleet"}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.FleetAvailability(ctx)
	})
	return out, err
}

// ExpiringDocuments returns the compliance expiry board.
func (s *Service) ExpiringDocuments(ctx context.Context) ([]ExpiringDocument, error) {
	var out []ExpiringDocument
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"expiring_docs"}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ExpiringDocuments(ctx)
	})
	return out, err
}

// DualStreamProfitability splits margin between trading and haulage.
func (s *Service) DualStreamProfitability(ctx context.Context, months int) ([]DualStreamProfitability, error) {
	if months <= 0 {
		months = defaultMonths
	}
	var out []DualStreamProfitability
	err := s.cache.FetchJSON(ctx, cache.BucketReports, []string{"dual_stream", fmt.Sprint(months)}, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.DualStreamProfitability(ctx, months)
	})
	return out, err
}

// Refresh rebuilds the materialized profitability views and drops cached reads.
// Called by the worker on a schedule.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.repo.RefreshProfitability(ctx); err != nil {
		return err
	}
	if err := s.cache.InvalidateFor(ctx, MutationRefresh); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", MutationRefresh), slog.Any("error", err))
	}
	return nil
}
