package billing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/orders"
)

var (
	// ErrRateNotFound indicates a line item referencing a catalog record that
	// is absent from the resolved rate set.
	ErrRateNotFound = errors.New("billing: rate reference not found")
	// ErrInvalidQuantity indicates a line item with quantity below 1.
	ErrInvalidQuantity = errors.New("billing: quantity must be at least 1")
)

// LineComputation is the priced breakdown for a single line item.
type LineComputation struct {
	ItemTypeID      int64           `json:"item_type_id"`
	FabricID        *int64          `json:"fabric_id,omitempty"`
	Quantity        int             `json:"quantity"`
	FabricMeters    decimal.Decimal `json:"fabric_meters"`
	FabricRate      decimal.Decimal `json:"fabric_rate"`
	StitchingRate   decimal.Decimal `json:"stitching_rate"`
	FabricAmount    decimal.Decimal `json:"fabric_amount"`
	StitchingAmount decimal.Decimal `json:"stitching_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// ComputeLineTotals prices each line item against the given rate set. It is
// pure and deterministic: the same items and rates always produce the same
// output, index-aligned with the input. A line without a fabric reference
// contributes stitching cost only.
func ComputeLineTotals(items []orders.LineItem, rates *catalog.RateSet) ([]LineComputation, error) {
	computations := make([]LineComputation, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}

		stitchingRate, ok := rates.StitchingRates[item.ItemTypeID]
		if !ok {
			return nil, ErrRateNotFound
		}

		fabricRate := decimal.Zero
		fabricAmount := decimal.Zero
		if item.FabricID != nil {
			fabricRate, ok = rates.FabricRates[*item.FabricID]
			if !ok {
				return nil, ErrRateNotFound
			}
			fabricAmount = item.FabricMeters.Mul(fabricRate)
		}

		stitchingAmount := decimal.NewFromInt(int64(item.Quantity)).Mul(stitchingRate)

		computations = append(computations, LineComputation{
			ItemTypeID:      item.ItemTypeID,
			FabricID:        item.FabricID,
			Quantity:        item.Quantity,
			FabricMeters:    item.FabricMeters,
			FabricRate:      fabricRate,
			StitchingRate:   stitchingRate,
			FabricAmount:    fabricAmount,
			StitchingAmount: stitchingAmount,
			TotalAmount:     fabricAmount.Add(stitchingAmount),
		})
	}
	return computations, nil
}

// ComputeSubtotal sums line totals. An empty list yields zero.
func ComputeSubtotal(computations []LineComputation) decimal.Decimal {
	subtotal := decimal.Zero
	for _, c := range computations {
		subtotal = subtotal.Add(c.TotalAmount)
	}
	return subtotal
}
