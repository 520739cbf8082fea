package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/platform/httpx"
)

// Handler manages billing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors
	var billed *AlreadyBilledError
	switch {
	case errors.As(err, &billed):
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"title":      "Already Billed",
			"status":     http.StatusConflict,
			"detail":     billed.Error(),
			"invoice_id": billed.InvoiceID,
		})
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrNotFound),
		errors.Is(err, catalog.ErrFabricNotFound), errors.Is(err, catalog.ErrItemTypeNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record no longer exists, please refresh")
	case errors.Is(err, ErrOrderExpired):
		httpx.Problem(w, http.StatusGone, "Order Expired", err.Error())
	case errors.Is(err, ErrInvalidPercentage), errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrRateNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	default:
		h.logger.Error("billing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parsePercent(r *http.Request, key string) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// Preview prices an order for the live billing screen without side effects.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	gstPct, err := parsePercent(r, "gst_percentage")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid gst_percentage")
		return
	}
	discountPct, err := parsePercent(r, "discount_percentage")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid discount_percentage")
		return
	}

	summary, err := h.service.Preview(r.Context(), orderID, gstPct, discountPct)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Generate finalizes an order into an invoice.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	invoice, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) ShowByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	invoice, err := h.service.GetByOrder(r.Context(), orderID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListInvoicesRequest{Limit: 50}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	invoices, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices, "total": total})
}
