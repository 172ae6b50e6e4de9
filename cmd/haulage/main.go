package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/haulage-erp/haulage-erp/internal/app"
	"github.com/haulage-erp/haulage-erp/internal/customers"
	"github.com/haulage-erp/haulage-erp/internal/documents"
	"github.com/haulage-erp/haulage-erp/internal/finance"
	"github.com/haulage-erp/haulage-erp/internal/fleet"
	"github.com/haulage-erp/haulage-erp/internal/health"
	"github.com/haulage-erp/haulage-erp/internal/inventory"
	"github.com/haulage-erp/haulage-erp/internal/observability"
	"github.com/haulage-erp/haulage-erp/internal/orders"
	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/platform/db"
	"github.com/haulage-erp/haulage-erp/internal/reports"
	"github.com/haulage-erp/haulage-erp/jobs"
)

// orderConfirmer adapts the orders service to the narrow surface finance needs.
type orderConfirmer struct {
	service *orders.Service
}

func (a orderConfirmer) ConfirmPayment(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.service.ConfirmPayment(ctx, orderID)
	return err
}

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
	metrics := observability.NewMetrics()

	fleetRepo := fleet.NewRepository(pool)
	fleetService := fleet.NewService(fleetRepo, cacheService, logger)
	fleetHandler := fleet.NewHandler(logger, fleetService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, cacheService, fleetService, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, cacheService, logger)
	customersHandler := customers.NewHandler(logger, customersService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, cacheService, logger)
	documentsHandler := documents.NewHandler(logger, documentsService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, cacheService, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, cacheService, orderConfirmer{service: ordersService}, logger)
	financeHandler := finance.NewHandler(logger, financeService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, cacheService, logger)
	reportsHandler := reports.NewHandler(logger, reportsService)

	probe := health.NewProbe(pool, redisClient, logger)
	healthHandler := health.NewHandler(probe)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		OrdersHandler:    ordersHandler,
		FleetHandler:     fleetHandler,
		CustomersHandler: customersHandler,
		DocumentsHandler: documentsHandler,
		InventoryHandler: inventoryHandler,
		FinanceHandler:   financeHandler,
		ReportsHandler:   reportsHandler,
		HealthHandler:    healthHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
