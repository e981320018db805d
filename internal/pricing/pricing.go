// Package pricing rolls requested taxes and fees up into order item totals.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// TaxCatalog loads configured taxes and fees by id. Unknown ids are simply
// absent from the result.
type TaxCatalog interface {
	FindTaxesAndFees(ctx context.Context, ids []int64) ([]model.TaxOrFee, error)
}

// Rollup is the outcome of one calculation.
type Rollup struct {
	TotalTaxes decimal.Decimal
	TotalFees  decimal.Decimal
	Snapshot   model.TaxAndFeeRollup
}

// Total returns taxes plus fees.
func (r Rollup) Total() decimal.Decimal {
	return r.TotalTaxes.Add(r.TotalFees)
}

// Calculator accumulates requested tax and fee amounts.
type Calculator struct {
	catalog TaxCatalog
}

// NewCalculator constructs a Calculator.
func NewCalculator(catalog TaxCatalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Calculate resolves every request against the catalog and sums the
// requested amounts by type. It fails with model.ErrTaxOrFeeNotFound before
// accumulating anything when an id is unknown.
func (c *Calculator) Calculate(ctx context.Context, reqs []model.TaxAndFeeRequest) (Rollup, error) {
	rollup := Rollup{
		TotalTaxes: decimal.Zero,
		TotalFees:  decimal.Zero,
		Snapshot:   model.TaxAndFeeRollup{Taxes: []model.RollupEntry{}, Fees: []model.RollupEntry{}},
	}
	if len(reqs) == 0 {
		return rollup, nil
	}

	ids := make([]int64, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.TaxOrFeeID)
	}
	found, err := c.catalog.FindTaxesAndFees(ctx, ids)
	if err != nil {
		return Rollup{}, fmt.Errorf("load taxes and fees: %w", err)
	}
	byID := make(map[int64]model.TaxOrFee, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	resolved := make([]model.TaxOrFee, len(reqs))
	for i, req := range reqs {
		t, ok := byID[req.TaxOrFeeID]
		if !ok {
			return Rollup{}, fmt.Errorf("tax or fee %d: %w", req.TaxOrFeeID, model.ErrTaxOrFeeNotFound)
		}
		resolved[i] = t
	}

	for i, t := range resolved {
		amount := reqs[i].Amount
		entry := model.RollupEntry{
			ID:              t.ID,
			Name:            t.Name,
			Type:            t.Type,
			CalculationType: t.CalculationType,
			Rate:            t.Rate,
			Value:           amount,
		}
		if t.IsTax() {
			rollup.TotalTaxes = rollup.TotalTaxes.Add(amount)
			rollup.Snapshot.Taxes = append(rollup.Snapshot.Taxes, entry)
		} else {
			rollup.TotalFees = rollup.TotalFees.Add(amount)
			rollup.Snapshot.Fees = append(rollup.Snapshot.Fees, entry)
		}
	}
	return rollup, nil
}
