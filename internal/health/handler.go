package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haulage-erp/haulage-erp/internal/platform/httpx"
)

// Handler exposes liveness and database connectivity endpoints.
type Handler struct {
	probe *Probe
}

// NewHandler constructs the health handler.
func NewHandler(probe *Probe) *Handler {
	return &Handler{probe: probe}
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DB reports the last recorded probe outcome. Unknown state falls through to a
// live check so a freshly started API answers correctly before the first cron
// probe lands.
func (h *Handler) DB(w http.ResponseWriter, r *http.Request) {
	status := h.probe.Last(r.Context())
	if status.State == StateUnknown {
		status = h.probe.Check(r.Context())
	}

	code := http.StatusOK
	if status.State != StateOnline {
		code = http.StatusServiceUnavailable
	}
	httpx.JSON(w, code, status)
}

// MountRoutes attaches health routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/healthz", h.Live)
	r.Get("/healthz/db", h.DB)
}
