package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// FABRIC
// ============================================================================

type Fabric struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	PricePerMeter decimal.Decimal `json:"price_per_meter" db:"price_per_meter"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateFabricRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
}

type UpdateFabricRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	PricePerMeter *decimal.Decimal `json:"price_per_meter,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// ============================================================================
// ITEM TYPE
// ============================================================================

// ItemType is a garment kind carrying the per-unit stitching charge.
type ItemType struct {
	ID              int64           `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	StitchingCharge decimal.Decimal `json:"stitching_charge" db:"stitching_charge"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateItemTypeRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	StitchingCharge decimal.Decimal `json:"stitching_charge"`
}

type UpdateItemTypeRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	StitchingCharge *decimal.Decimal `json:"stitching_charge,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

// ============================================================================
// STYLE & CATEGORY
// ============================================================================

// Style is purely descriptive and contributes no cost.
type Style struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CategoryID *int64    `json:"category_id,omitempty" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type CreateStyleRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	CategoryID *int64 `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateStyleRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	CategoryID *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// ============================================================================
// LIST & RATE RESOLUTION
// ============================================================================

type ListFilters struct {
	Search string `json:"search"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// RateSet carries catalog rates resolved at a single point in time. Billing
// reads one of these at generation time so prices are always catalog
// authoritative, never replayed from order entry.
type RateSet struct {
	FabricRates    map[int64]decimal.Decimal
	StitchingRates map[int64]decimal.Decimal
}
