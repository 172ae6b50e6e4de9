package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/haulage-erp/haulage-erp/internal/platform/httpx"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Handler exposes the read-only reports API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) TripProfitability(w http.ResponseWriter, r *http.Request) {
	v2 := r.URL.Query().Get("v2") == "true"
	from, ok := h.parseDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.parseDate(w, r, "to")
	if !ok {
		return
	}

	rows, err := h.service.TripProfitability(r.Context(), v2, from, to)
	if err != nil {
		h.respondError(w, "trip profitability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trips": rows})
}

func (h *Handler) MonthlyProfitLoss(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	rows, err := h.service.MonthlyProfitLoss(r.Context(), months)
	if err != nil {
		h.respondError(w, "monthly profit loss", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"months": rows})
}

func (h *Handler) ReceivablesAging(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ReceivablesAging(r.Context())
	if err != nil {
		h.respondError(w, "receivables aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": rows})
}

func (h *Handler) CustomerAging(w http.ResponseWriter, r *http.Request) {
	minAge, _ := strconv.Atoi(r.URL.Query().Get("min_age_days"))
	rows, err := h.service.CustomerAging(r.Context(), minAge)
	if err != nil {
		h.respondError(w, "customer aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": rows})
}

func (h *Handler) FleetAvailability(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.FleetAvailability(r.Context())
	if err != nil {
		h.respondError(w, "fleet availability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trucks": rows})
}

func (h *Handler) ExpiringDocuments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ExpiringDocuments(r.Context())
	if err != nil {
		h.respondError(w, "expiring documents", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": rows})
}

func (h *Handler) DualStreamProfitability(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	rows, err := h.service.DualStreamProfitability(r.Context(), months)
	if err != nil {
		h.respondError(w, "dual stream profitability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"months": rows})
}

func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request, key string) (*time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid filter", key+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
}
