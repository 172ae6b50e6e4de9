package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/haulage-erp/haulage-erp/internal/app"
	"github.com/haulage-erp/haulage-erp/internal/documents"
	"github.com/haulage-erp/haulage-erp/internal/health"
	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/platform/db"
	"github.com/haulage-erp/haulage-erp/internal/reports"
	"github.com/haulage-erp/haulage-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	cacheService := cache.New(redisClient, cfg.CacheTTL)

	probe := health.NewProbe(pool, redisClient, logger)
	probeJob := jobs.NewConnectivityProbeJob(probe, logger)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, cacheService, logger)
	expiryJob := jobs.NewDocumentExpiryScanJob(documentsService, logger)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, cacheService, logger)
	refreshJob := jobs.NewReportsRefreshJob(reportsService, logger)

	expiryTask, err := jobs.NewDocumentExpiryScanTask(jobs.ExpiryScanPayload{})
	if err != nil {
		logger.Error("build expiry task", slog.Any("error", err))
		os.Exit(1)
	}

	probeSpec := fmt.Sprintf("@every %s", cfg.ProbeInterval)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskConnectivityProbe, Handler: probeJob.Handle},
			{Type: jobs.TaskDocumentExpiryScan, Handler: expiryJob.Handle},
			{Type: jobs.TaskReportsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: probeSpec, Task: jobs.NewConnectivityProbeTask()},
			{Spec: "0 6 * * *", Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 */4 * * *", Task: jobs.NewReportsRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
