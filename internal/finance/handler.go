package finance

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

// Handler exposes the finance API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the finance handler.
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

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), req)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "customer_id must be a UUID")
			return
		}
		customerID = &id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.service.ListPayments(r.Context(), customerID, limit, offset)
	if err != nil {
		h.respondError(w, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var req RecordExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	expense, err := h.service.RecordExpense(r.Context(), req)
	if err != nil {
		h.respondError(w, "record expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.service.ListExpenses(r.Context(), r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		h.respondError(w, "list expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) RecordHaulagePayment(w http.ResponseWriter, r *http.Request) {
	var req RecordHaulagePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.service.RecordHaulagePayment(r.Context(), req)
	if err != nil {
		h.respondError(w, "record haulage payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListHaulagePayments(w http.ResponseWriter, r *http.Request) {
	var orderID *uuid.UUID
	if raw := r.URL.Query().Get("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "order_id must be a UUID")
			return
		}
		orderID = &id
	}

	payments, err := h.service.ListHaulagePayments(r.Context(), orderID)
	if err != nil {
		h.respondError(w, "list haulage payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) RecordCementPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordCementPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.RecordCementPayment(r.Context(), req)
	if err != nil {
		h.respondError(w, "record cement payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) ListCementPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListCementPayments(r.Context(), r.URL.Query().Get("supplier"))
	if err != nil {
		h.respondError(w, "list cement payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.service.ListWallets(r.Context())
	if err != nil {
		h.respondError(w, "list wallets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"wallets": wallets})
}

func (h *Handler) WalletStatement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	statement, err := h.service.WalletStatement(r.Context(), id)
	if err != nil {
		h.respondError(w, "wallet statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
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
	case errors.Is(err, ErrWalletAccrual):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Wallet accrual failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
