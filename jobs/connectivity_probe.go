package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/haulage-erp/haulage-erp/internal/health"
)

// ConnectivityProbeJob re-runs the database probe and records the outcome.
type ConnectivityProbeJob struct {
	Probe  *health.Probe
	Logger *slog.Logger
}

// NewConnectivityProbeJob initialises the probe handler.
func NewConnectivityProbeJob(probe *health.Probe, logger *slog.Logger) *ConnectivityProbeJob {
	return &ConnectivityProbeJob{Probe: probe, Logger: logger}
}

// Handle executes the probe.
func (j *ConnectivityProbeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Probe == nil {
		return errors.New("connectivity probe: handler not configured")
	}
	status := j.Probe.Check(ctx)
	if status.State != health.StateOnline {
		j.logger().Warn("database unreachable", slog.String("detail", status.Detail))
	}
	return nil
}

func (j *ConnectivityProbeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
