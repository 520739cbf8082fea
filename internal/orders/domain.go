package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates pending-order lifecycle states.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusBilled  OrderStatus = "billed"
	StatusExpired OrderStatus = "expired"
)

// PendingOrder is the intake record for a customer's tailoring order prior
// to billing. It owns its line items.
type PendingOrder struct {
	ID             int64       `json:"id" db:"id"`
	TokenNumber    string      `json:"token_number" db:"token_number"`
	CustomerName   string      `json:"customer_name" db:"customer_name"`
	CustomerMobile string      `json:"customer_mobile" db:"customer_mobile"`
	CustomerEmail  *string     `json:"customer_email,omitempty" db:"customer_email"`
	MasterID       int64       `json:"master_id" db:"master_id"`
	SalesmanID     int64       `json:"salesman_id" db:"salesman_id"`
	OrderType      string      `json:"order_type" db:"order_type"`
	Status         OrderStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	Items          []LineItem  `json:"items,omitempty" db:"-"`
}

// LineItem is one garment entry within an order, referencing catalog rate
// records. Fabric and style are optional; a fabric-less item contributes
// stitching cost only.
type LineItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"order_id" db:"order_id"`
	ItemTypeID   int64           `json:"item_type_id" db:"item_type_id"`
	FabricID     *int64          `json:"fabric_id,omitempty" db:"fabric_id"`
	StyleID      *int64          `json:"style_id,omitempty" db:"style_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	FabricMeters decimal.Decimal `json:"fabric_meters" db:"fabric_meters"`
	DesignNumber *string         `json:"design_number,omitempty" db:"design_number"`
	Description  *string         `json:"description,omitempty" db:"description"`
	LineOrder    int             `json:"line_order" db:"line_order"`
}

type CreateOrderRequest struct {
	TokenNumber    string                 `json:"token_number" validate:"omitempty,max=50"`
	CustomerName   string                 `json:"customer_name" validate:"required,max=200"`
	CustomerMobile string                 `json:"customer_mobile" validate:"required,max=20"`
	CustomerEmail  *string                `json:"customer_email,omitempty" validate:"omitempty,email"`
	MasterID       int64                  `json:"master_id" validate:"required,gt=0"`
	SalesmanID     int64                  `json:"salesman_id" validate:"required,gt=0"`
	OrderType      string                 `json:"order_type" validate:"required,max=50"`
	Items          []CreateLineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateLineItemRequest struct {
	ItemTypeID   int64           `json:"item_type_id" validate:"required,gt=0"`
	FabricID     *int64          `json:"fabric_id,omitempty" validate:"omitempty,gt=0"`
	StyleID      *int64          `json:"style_id,omitempty" validate:"omitempty,gt=0"`
	Quantity     int             `json:"quantity" validate:"required,gte=1"`
	FabricMeters decimal.Decimal `json:"fabric_meters"`
	DesignNumber *string         `json:"design_number,omitempty" validate:"omitempty,max=50"`
	Description  *string         `json:"description,omitempty"`
	LineOrder    int             `json:"line_order" validate:"gte=0"`
}

type ListOrdersRequest struct {
	Status *OrderStatus `json:"status,omitempty"`
	Search *string      `json:"search,omitempty"`
	// RecentSince excludes pending orders created before the cutoff. It is a
	// read-side filter: rows themselves are untouched.
	RecentSince *time.Time `json:"recent_since,omitempty"`
	Limit       int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int        `json:"offset" validate:"gte=0"`
}
