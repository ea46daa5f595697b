// Package billing is the single implementation of the shop's money and
// loyalty arithmetic. Every surface that shows a figure derived from an
// estimate (employee dashboard, customer portal, public status board,
// PDF/CSV reports) goes through this package; none of them re-derive
// totals locally.
//
// Everything here is a pure function over its arguments: no I/O, no
// package state, no clocks.
package billing

import "garage-backend/internal/models"

// ComputeEstimateTotals computes the monetary figures for one estimate.
// The result depends only on the estimate's own fields. Empty or nil
// part/labor/payment slices contribute zero. Discount percents are
// nullable and default to 0 when absent (legacy rows). Inputs are not
// validated here; bad prices or quantities are the data-entry layer's
// problem and pass straight through.
func ComputeEstimateTotals(est *models.Estimate) models.EstimateTotals {
	var t models.EstimateTotals

	for _, p := range est.Parts {
		t.PartsSubtotal += p.Price * p.Quantity
	}
	for _, l := range est.Labor {
		t.LaborSubtotal += l.Rate * l.Hours
	}

	t.PartsDiscountAmount = t.PartsSubtotal * derefPercent(est.PartsDiscountPercent) / 100
	t.LaborDiscountAmount = t.LaborSubtotal * derefPercent(est.LaborDiscountPercent) / 100

	t.Total = (t.PartsSubtotal - t.PartsDiscountAmount) + (t.LaborSubtotal - t.LaborDiscountAmount)

	for _, p := range est.Payments {
		t.TotalPaid += p.Amount
	}
	t.BalanceDue = t.Total - t.TotalPaid

	return t
}

func derefPercent(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
