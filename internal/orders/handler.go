package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/httpx"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Handler exposes the orders API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the orders handler.
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListOrdersRequest{Limit: 50}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := OrderStatus(v)
		if !status.IsValid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "unknown order status: "+v)
			return
		}
		req.Status = &status
	}
	if v := q.Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "customer_id must be a UUID")
			return
		}
		req.CustomerID = &id
	}
	req.DateFrom = parseDate(q.Get("date_from"))
	req.DateTo = parseDate(q.Get("date_to"))
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Offset = n
		}
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order":           order,
		"allowed_actions": Allowed(order),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.service.ConfirmPayment(r.Context(), id)
	if err != nil {
		h.respondError(w, "confirm payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req DispatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Dispatch(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "dispatch order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req ReassignRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Reassign(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "reassign order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req ReconcileRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Reconcile(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "reconcile order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req CancelOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Cancel(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "cancel order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Pipeline(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Pipeline(r.Context())
	if err != nil {
		h.respondError(w, "pipeline counts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func (h *Handler) Shortages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var orderID *uuid.UUID
	if v := q.Get("order_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "order_id must be a UUID")
			return
		}
		orderID = &id
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	shortages, total, err := h.service.Shortages(r.Context(), orderID, limit, offset)
	if err != nil {
		h.respondError(w, "list shortages", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shortages": shortages, "total": total})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be a UUID")
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
		httpx.Problem(w, http.StatusNotFound, "Not found", "order not found")
	case errors.Is(err, ErrReconciliationRejected):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Reconciliation rejected", err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrGuardFailed), errors.Is(err, shared.ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Invalid order state", err.Error())
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
