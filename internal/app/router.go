package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/haulage-erp/haulage-erp/internal/customers"
	"github.com/haulage-erp/haulage-erp/internal/documents"
	"github.com/haulage-erp/haulage-erp/internal/finance"
	"github.com/haulage-erp/haulage-erp/internal/fleet"
	"github.com/haulage-erp/haulage-erp/internal/health"
	"github.com/haulage-erp/haulage-erp/internal/inventory"
	"github.com/haulage-erp/haulage-erp/internal/observability"
	"github.com/haulage-erp/haulage-erp/internal/orders"
	"github.com/haulage-erp/haulage-erp/internal/reports"
	"github.com/haulage-erp/haulage-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	OrdersHandler    *orders.Handler
	FleetHandler     *fleet.Handler
	CustomersHandler *customers.Handler
	DocumentsHandler *documents.Handler
	InventoryHandler *inventory.Handler
	FinanceHandler   *finance.Handler
	ReportsHandler   *reports.Handler
	HealthHandler    *health.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	if params.HealthHandler != nil {
		params.HealthHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/orders", func(sub chi.Router) {
			params.OrdersHandler.MountRoutes(sub)
		})
		params.FleetHandler.MountRoutes(api)
		params.CustomersHandler.MountRoutes(api)
		params.DocumentsHandler.MountRoutes(api)
		params.InventoryHandler.MountRoutes(api)
		params.FinanceHandler.MountRoutes(api)
		params.ReportsHandler.MountRoutes(api)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(sub chi.Router) {
			params.JobHandler.MountRoutes(sub)
		})
	}

	return r
}
