package billing

import (
	"math"
	"testing"

	"garage-backend/internal/models"
)

func pct(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeEstimateTotals(t *testing.T) {
	tests := []struct {
		name string
		est  models.Estimate
		want models.EstimateTotals
	}{
		{
			name: "empty estimate is all zeros",
			est:  models.Estimate{},
			want: models.EstimateTotals{},
		},
		{
			name: "parts and labor with parts discount and a payment",
			est: models.Estimate{
				Parts:                []models.PartLine{{Price: 100, Quantity: 2}},
				Labor:                []models.LaborLine{{Rate: 50, Hours: 3}},
				PartsDiscountPercent: pct(10),
				LaborDiscountPercent: pct(0),
				Payments:             []models.Payment{{Amount: 100}},
			},
			want: models.EstimateTotals{
				PartsSubtotal:       200,
				PartsDiscountAmount: 20,
				LaborSubtotal:       150,
				LaborDiscountAmount: 0,
				Total:               330,
				TotalPaid:           100,
				BalanceDue:          230,
			},
		},
		{
			name: "nil discount fields behave as zero",
			est: models.Estimate{
				Parts: []models.PartLine{{Price: 40, Quantity: 1}},
				Labor: []models.LaborLine{{Rate: 60, Hours: 0.5}},
			},
			want: models.EstimateTotals{
				PartsSubtotal: 40,
				LaborSubtotal: 30,
				Total:         70,
				BalanceDue:    70,
			},
		},
		{
			name: "multiple payments sum regardless of order",
			est: models.Estimate{
				Labor:    []models.LaborLine{{Rate: 100, Hours: 2}},
				Payments: []models.Payment{{Amount: 50}, {Amount: 120}, {Amount: 30}},
			},
			want: models.EstimateTotals{
				LaborSubtotal: 200,
				Total:         200,
				TotalPaid:     200,
				BalanceDue:    0,
			},
		},
		{
			name: "overpayment yields negative balance",
			est: models.Estimate{
				Parts:    []models.PartLine{{Price: 10, Quantity: 1}},
				Payments: []models.Payment{{Amount: 25}},
			},
			want: models.EstimateTotals{
				PartsSubtotal: 10,
				Total:         10,
				TotalPaid:     25,
				BalanceDue:    -15,
			},
		},
		{
			name: "labor discount applies to labor only",
			est: models.Estimate{
				Parts:                []models.PartLine{{Price: 100, Quantity: 1}},
				Labor:                []models.LaborLine{{Rate: 80, Hours: 5}},
				LaborDiscountPercent: pct(25),
			},
			want: models.EstimateTotals{
				PartsSubtotal:       100,
				LaborSubtotal:       400,
				LaborDiscountAmount: 100,
				Total:               400,
				BalanceDue:          400,
			},
		},
		{
			name: "negative price passes through unvalidated",
			est: models.Estimate{
				Parts: []models.PartLine{{Price: -50, Quantity: 2}},
			},
			want: models.EstimateTotals{
				PartsSubtotal: -100,
				Total:         -100,
				BalanceDue:    -100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEstimateTotals(&tt.est)
			fields := []struct {
				name      string
				got, want float64
			}{
				{"PartsSubtotal", got.PartsSubtotal, tt.want.PartsSubtotal},
				{"LaborSubtotal", got.LaborSubtotal, tt.want.LaborSubtotal},
				{"PartsDiscountAmount", got.PartsDiscountAmount, tt.want.PartsDiscountAmount},
				{"LaborDiscountAmount", got.LaborDiscountAmount, tt.want.LaborDiscountAmount},
				{"Total", got.Total, tt.want.Total},
				{"TotalPaid", got.TotalPaid, tt.want.TotalPaid},
				{"BalanceDue", got.BalanceDue, tt.want.BalanceDue},
			}
			for _, f := range fields {
				if !almostEqual(f.got, f.want) {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestComputeEstimateTotals_Deterministic(t *testing.T) {
	est := models.Estimate{
		Parts:                []models.PartLine{{Price: 33.33, Quantity: 3}},
		Labor:                []models.LaborLine{{Rate: 72.5, Hours: 1.25}},
		PartsDiscountPercent: pct(7.5),
		Payments:             []models.Payment{{Amount: 19.99}},
	}
	first := ComputeEstimateTotals(&est)
	second := ComputeEstimateTotals(&est)
	if first != second {
		t.Errorf("two calls with identical input differ: %+v vs %+v", first, second)
	}
}

func TestComputeEstimateTotals_ZeroDiscountIdentity(t *testing.T) {
	est := models.Estimate{
		Parts:                []models.PartLine{{Price: 12.5, Quantity: 4}, {Price: 3, Quantity: 10}},
		Labor:                []models.LaborLine{{Rate: 90, Hours: 2.5}},
		PartsDiscountPercent: pct(0),
		LaborDiscountPercent: pct(0),
	}
	got := ComputeEstimateTotals(&est)
	if !almostEqual(got.Total, got.PartsSubtotal+got.LaborSubtotal) {
		t.Errorf("Total = %v, want PartsSubtotal+LaborSubtotal = %v", got.Total, got.PartsSubtotal+got.LaborSubtotal)
	}
}

func TestComputeEstimateTotals_BalanceIdentity(t *testing.T) {
	est := models.Estimate{
		Parts:    []models.PartLine{{Price: 100, Quantity: 1}},
		Payments: []models.Payment{{Amount: 30}, {Amount: 45}},
	}
	got := ComputeEstimateTotals(&est)
	if !almostEqual(got.BalanceDue, got.Total-got.TotalPaid) {
		t.Errorf("BalanceDue = %v, want Total-TotalPaid = %v", got.BalanceDue, got.Total-got.TotalPaid)
	}

	est.Payments = nil
	got = ComputeEstimateTotals(&est)
	if !almostEqual(got.BalanceDue, got.Total) {
		t.Errorf("with no payments BalanceDue = %v, want Total = %v", got.BalanceDue, got.Total)
	}
}
