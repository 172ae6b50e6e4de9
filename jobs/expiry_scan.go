package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/haulage-erp/haulage-erp/internal/documents"
)

// DocumentExpiryScanJob walks the expiring-documents view and logs every
// expired or critical record.
type DocumentExpiryScanJob struct {
	Service *documents.Service
	Logger  *slog.Logger
}

// NewDocumentExpiryScanJob initialises the expiry scan handler.
func NewDocumentExpiryScanJob(service *documents.Service, logger *slog.Logger) *DocumentExpiryScanJob {
	return &DocumentExpiryScanJob{Service: service, Logger: logger}
}

// Handle executes the scan.
func (j *DocumentExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("document expiry scan: handler not configured")
	}
	var payload ExpiryScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	start := time.Now()
	flagged, err := j.Service.ScanExpiring(ctx)
	if err != nil {
		j.logger().Error("expiry scan failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("completed expiry scan",
		slog.Int("flagged", flagged),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *DocumentExpiryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
