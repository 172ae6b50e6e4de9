package fleet

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/httpx"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Handler exposes the fleet API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the fleet handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.service.ListTrucks(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, "list trucks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trucks": trucks})
}

func (h *Handler) CreateTruck(w http.ResponseWriter, r *http.Request) {
	var req CreateTruckRequest
	if !h.decode(w, r, &req) {
		return
	}
	truck, err := h.service.CreateTruck(r.Context(), req)
	if err != nil {
		h.respondError(w, "create truck", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, truck)
}

func (h *Handler) UpdateTruck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateTruckRequest
	if !h.decode(w, r, &req) {
		return
	}
	truck, err := h.service.UpdateTruck(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update truck", err)
		return
	}
	httpx.JSON(w, http.StatusOK, truck)
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.ListDrivers(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, "list drivers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	driver, err := h.service.GetDriver(r.Context(), id)
	if err != nil {
		h.respondError(w, "get driver", err)
		return
	}
	httpx.JSON(w, http.StatusOK, driver)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if !h.decode(w, r, &req) {
		return
	}
	driver, err := h.service.CreateDriver(r.Context(), req)
	if err != nil {
		h.respondError(w, "create driver", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, driver)
}

func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateDriverRequest
	if !h.decode(w, r, &req) {
		return
	}
	driver, err := h.service.UpdateDriver(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update driver", err)
		return
	}
	httpx.JSON(w, http.StatusOK, driver)
}

func (h *Handler) PostLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req PostLedgerRequest
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.service.PostLedger(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "post ledger entry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.service.Ledger(r.Context(), id, limit, offset)
	if err != nil {
		h.respondError(w, "driver ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "record not found")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
