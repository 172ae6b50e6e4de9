package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/haulage-erp/haulage-erp/internal/reports"
)

// ReportsRefreshJob rebuilds the materialized profitability views and drops
// the cached report reads.
type ReportsRefreshJob struct {
	Service *reports.Service
	Logger  *slog.Logger
}

// NewReportsRefreshJob initialises the refresh handler.
func NewReportsRefreshJob(service *reports.Service, logger *slog.Logger) *ReportsRefreshJob {
	return &ReportsRefreshJob{Service: service, Logger: logger}
}

// Handle executes the refresh.
func (j *ReportsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("reports refresh: handler not configured")
	}

	start := time.Now()
	if err := j.Service.Refresh(ctx); err != nil {
		j.logger().Error("reports refresh failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("completed reports refresh", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportsRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
