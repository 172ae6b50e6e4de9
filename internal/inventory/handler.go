package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/httpx"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Handler exposes the inventory API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory handler.
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

func (h *Handler) ListDepots(w http.ResponseWriter, r *http.Request) {
	depots, err := h.service.ListDepots(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, "list depots", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"depots": depots})
}

func (h *Handler) CreateDepot(w http.ResponseWriter, r *http.Request) {
	var req CreateDepotRequest
	if !h.decode(w, r, &req) {
		return
	}
	depot, err := h.service.CreateDepot(r.Context(), req)
	if err != nil {
		h.respondError(w, "create depot", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, depot)
}

func (h *Handler) UpdateDepot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	var req UpdateDepotRequest
	if !h.decode(w, r, &req) {
		return
	}
	depot, err := h.service.UpdateDepot(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update depot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, depot)
}

func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	var depotID *uuid.UUID
	if raw := r.URL.Query().Get("depot_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "depot_id must be a UUID")
			return
		}
		depotID = &id
	}

	resp, err := h.service.ListStock(r.Context(), depotID)
	if err != nil {
		h.respondError(w, "list stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if !h.decode(w, r, &req) {
		return
	}
	row, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		h.respondError(w, "adjust stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
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
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient stock", "issue exceeds quantity on hand")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
