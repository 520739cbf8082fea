package billing

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-erp/atelier-erp/internal/orders"
)

func newTestRouter() (chi.Router, *mockRepository, *mockOrderStore) {
	service, repo, store, _ := newTestBilling()
	handler := NewHandler(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), service)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, repo, store
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateEndpointCreatesInvoice(t *testing.T) {
	router, _, store := newTestRouter()
	store.orders[1] = scenarioOrder(1)

	rec := postJSON(t, router, "/invoices", generateReq(1))
	require.Equal(t, http.StatusCreated, rec.Code)

	var inv struct {
		Number      string          `json:"number"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.NotEmpty(t, inv.Number)
	assert.True(t, inv.TotalAmount.Equal(dec("1188")), "got %s", inv.TotalAmount)
}

func TestGenerateEndpointConflictCarriesInvoiceID(t *testing.T) {
	router, _, store := newTestRouter()
	store.orders[1] = scenarioOrder(1)

	first := postJSON(t, router, "/invoices", generateReq(1))
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, router, "/invoices", generateReq(1))
	require.Equal(t, http.StatusConflict, second.Code)

	var body struct {
		Title     string `json:"title"`
		InvoiceID int64  `json:"invoice_id"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "Already Billed", body.Title)
	assert.NotZero(t, body.InvoiceID)
}

func TestGenerateEndpointExpiredOrder(t *testing.T) {
	router, _, store := newTestRouter()
	order := scenarioOrder(1)
	order.Status = orders.StatusExpired
	store.orders[1] = order

	rec := postJSON(t, router, "/invoices", generateReq(1))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestGenerateEndpointMissingOrder(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := postJSON(t, router, "/invoices", generateReq(9))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateEndpointBadPercentage(t *testing.T) {
	router, _, store := newTestRouter()
	store.orders[1] = scenarioOrder(1)

	req := generateReq(1)
	req.DiscountPercentage = dec("150")
	rec := postJSON(t, router, "/invoices", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	router, repo, store := newTestRouter()
	store.orders[1] = scenarioOrder(1)

	req := httptest.NewRequest(http.MethodGet, "/orders/1/preview?gst_percentage=18&discount_percentage=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Subtotal    decimal.Decimal `json:"subtotal"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.Subtotal.Equal(dec("1100")), "got %s", summary.Subtotal)
	assert.True(t, summary.TotalAmount.Equal(dec("1188")), "got %s", summary.TotalAmount)

	assert.Empty(t, repo.invoices, "preview must not persist")
}

func TestPreviewEndpointRejectsBadQuery(t *testing.T) {
	router, _, store := newTestRouter()
	store.orders[1] = scenarioOrder(1)

	req := httptest.NewRequest(http.MethodGet, "/orders/1/preview?gst_percentage=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
