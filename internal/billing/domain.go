package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the finalized, priced billing document generated from exactly
// one pending order. Invoices are immutable once created.
type Invoice struct {
	ID                 int64           `json:"id" db:"id"`
	Number             string          `json:"number" db:"number"`
	PendingOrderID     int64           `json:"pending_order_id" db:"pending_order_id"`
	GSTPercentage      decimal.Decimal `json:"gst_percentage" db:"gst_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	Subtotal           decimal.Decimal `json:"subtotal" db:"subtotal"`
	GSTAmount          decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	Remarks            *string         `json:"remarks,omitempty" db:"remarks"`
	Terms              *string         `json:"terms,omitempty" db:"terms"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// GenerateInvoiceRequest carries operator input for finalizing an order.
// All monetary amounts are recomputed server-side; only percentages, dates
// and free text are accepted from the caller.
type GenerateInvoiceRequest struct {
	OrderID            int64           `json:"order_id" validate:"required,gt=0"`
	GSTPercentage      decimal.Decimal `json:"gst_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DueDate            time.Time       `json:"due_date" validate:"required"`
	Remarks            *string         `json:"remarks,omitempty"`
	Terms              *string         `json:"terms,omitempty"`
}

// BillingSummary is the presentation contract consumed by billing-summary
// and printable-slip renderers.
type BillingSummary struct {
	Subtotal       decimal.Decimal   `json:"subtotal"`
	GSTAmount      decimal.Decimal   `json:"gst_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	Items          []LineComputation `json:"items"`
}

type ListInvoicesRequest struct {
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Limit    int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int        `json:"offset" validate:"gte=0"`
}

// AlreadyBilledError reports a finalization attempt against an order that
// already has an invoice, carrying the existing invoice id so callers can
// present "this order was already billed" instead of a generic failure.
type AlreadyBilledError struct {
	OrderID   int64
	InvoiceID int64
}

func (e *AlreadyBilledError) Error() string {
	if e.InvoiceID > 0 {
		return fmt.Sprintf("billing: order %d already billed by invoice %d", e.OrderID, e.InvoiceID)
	}
	return fmt.Sprintf("billing: order %d already billed", e.OrderID)
}

// Unwrap lets errors.Is match the sentinel.
func (e *AlreadyBilledError) Unwrap() error {
	return ErrOrderAlreadyBilled
}
