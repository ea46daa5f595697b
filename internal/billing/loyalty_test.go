package billing

import (
	"testing"

	"garage-backend/internal/models"
)

func threeTierConfig() models.LoyaltyConfig {
	return models.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[models.Tier]models.TierBenefits{
			models.TierBronze: {PointsThreshold: 0},
			models.TierSilver: {PointsThreshold: 200},
			models.TierGold:   {PointsThreshold: 500},
			models.TierStaff:  {PointsThreshold: 0, LaborDiscountRate: 0.5},
		},
	}
}

func completed(phone string, total float64) *models.Estimate {
	return &models.Estimate{
		Status:        models.EstimateStatusCompleted,
		CustomerPhone: phone,
		Labor:         []models.LaborLine{{Rate: total, Hours: 1}},
	}
}

func TestComputeClientAggregates_Basic(t *testing.T) {
	ests := []*models.Estimate{
		completed("0722", 330),
	}
	ledger := map[string]int{"0722": 15}

	aggs := ComputeClientAggregates(ests, threeTierConfig(), ledger, nil)
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}
	if aggs[0].LoyaltyPoints != 345 {
		t.Errorf("LoyaltyPoints = %d, want 345", aggs[0].LoyaltyPoints)
	}
	if aggs[0].Tier != models.TierSilver {
		t.Errorf("Tier = %q, want SILVER", aggs[0].Tier)
	}
	if aggs[0].VisitCount != 1 {
		t.Errorf("VisitCount = %d, want 1", aggs[0].VisitCount)
	}
}

func TestComputeClientAggregates_ExclusionRules(t *testing.T) {
	ests := []*models.Estimate{
		// COMPLETED without a phone: cannot be attributed, dropped.
		completed("", 1000),
		// Non-completed with a phone: does not count regardless of phone.
		{
			Status:        models.EstimateStatusDraft,
			CustomerPhone: "0711",
			Labor:         []models.LaborLine{{Rate: 500, Hours: 1}},
		},
		{
			Status:        models.EstimateStatusAwaitingPayment,
			CustomerPhone: "0711",
			Labor:         []models.LaborLine{{Rate: 500, Hours: 1}},
		},
		completed("0711", 100),
	}

	aggs := ComputeClientAggregates(ests, threeTierConfig(), nil, nil)
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}
	if aggs[0].Phone != "0711" {
		t.Errorf("Phone = %q, want 0711", aggs[0].Phone)
	}
	if aggs[0].TotalSpent != 100 {
		t.Errorf("TotalSpent = %v, want 100 (drafts and phoneless rows must not count)", aggs[0].TotalSpent)
	}
	if aggs[0].VisitCount != 1 {
		t.Errorf("VisitCount = %d, want 1", aggs[0].VisitCount)
	}
}

func TestComputeClientAggregates_AccruesOnBilledValueNotPayments(t *testing.T) {
	est := completed("0733", 400)
	// Nothing paid: points still accrue on the billed total.
	aggs := ComputeClientAggregates([]*models.Estimate{est}, threeTierConfig(), nil, nil)
	if aggs[0].LoyaltyPoints != 400 {
		t.Errorf("LoyaltyPoints = %d, want 400 (unpaid balance must not reduce points)", aggs[0].LoyaltyPoints)
	}

	est.Payments = []models.Payment{{Amount: 400}}
	aggs = ComputeClientAggregates([]*models.Estimate{est}, threeTierConfig(), nil, nil)
	if aggs[0].LoyaltyPoints != 400 {
		t.Errorf("LoyaltyPoints = %d after full payment, want 400", aggs[0].LoyaltyPoints)
	}
}

func TestComputeClientAggregates_GroupingAndAverages(t *testing.T) {
	ests := []*models.Estimate{
		completed("0744", 100),
		completed("0744", 200),
		completed("0744", 60),
	}
	aggs := ComputeClientAggregates(ests, threeTierConfig(), nil, nil)
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}
	if aggs[0].TotalSpent != 360 {
		t.Errorf("TotalSpent = %v, want 360", aggs[0].TotalSpent)
	}
	if aggs[0].VisitCount != 3 {
		t.Errorf("VisitCount = %d, want 3", aggs[0].VisitCount)
	}
	if aggs[0].AvgSpent != 120 {
		t.Errorf("AvgSpent = %v, want 120", aggs[0].AvgSpent)
	}
}

func TestComputeClientAggregates_OrderedByPointsDescending(t *testing.T) {
	ests := []*models.Estimate{
		completed("low", 50),
		completed("high", 900),
		completed("mid", 300),
	}
	aggs := ComputeClientAggregates(ests, threeTierConfig(), nil, nil)
	want := []string{"high", "mid", "low"}
	for i, phone := range want {
		if aggs[i].Phone != phone {
			t.Errorf("position %d = %q, want %q", i, aggs[i].Phone, phone)
		}
	}
}

func TestComputeClientAggregates_TierMonotonicity(t *testing.T) {
	cfg := threeTierConfig()
	rank := map[models.Tier]int{"": 0, models.TierBronze: 1, models.TierSilver: 2, models.TierGold: 3}

	ests := []*models.Estimate{
		completed("a", 750),
		completed("b", 250),
		completed("c", 10),
	}
	aggs := ComputeClientAggregates(ests, cfg, nil, nil)
	for i := 1; i < len(aggs); i++ {
		if aggs[i-1].LoyaltyPoints > aggs[i].LoyaltyPoints &&
			rank[aggs[i-1].Tier] < rank[aggs[i].Tier] {
			t.Errorf("customer %s has more points than %s but lower tier (%s < %s)",
				aggs[i-1].Phone, aggs[i].Phone, aggs[i-1].Tier, aggs[i].Tier)
		}
	}
}

func TestComputeClientAggregates_FilterAfterAggregation(t *testing.T) {
	ests := []*models.Estimate{
		completed("0755", 600),
		completed("0766", 600),
	}
	ests[0].CustomerName = "Alice Wrench"
	ests[1].CustomerName = "Bob Piston"

	aggs := ComputeClientAggregates(ests, threeTierConfig(), nil, &AggregateFilter{Query: "alice"})
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}
	// Filtering must not change the surviving row's figures.
	if aggs[0].TotalSpent != 600 || aggs[0].Tier != models.TierGold {
		t.Errorf("filtered row changed: %+v", aggs[0])
	}

	aggs = ComputeClientAggregates(ests, threeTierConfig(), nil, &AggregateFilter{Tier: models.TierGold})
	if len(aggs) != 2 {
		t.Errorf("tier filter got %d rows, want 2", len(aggs))
	}
	aggs = ComputeClientAggregates(ests, threeTierConfig(), nil, &AggregateFilter{Tier: models.TierSilver})
	if len(aggs) != 0 {
		t.Errorf("tier filter got %d rows, want 0", len(aggs))
	}
}

func TestComputeClientAggregates_StaffTierNeverAssigned(t *testing.T) {
	// STAFF has threshold 0 and would win any descending-threshold walk that
	// forgot to exclude it.
	aggs := ComputeClientAggregates([]*models.Estimate{completed("0777", 10)}, threeTierConfig(), nil, nil)
	if aggs[0].Tier == models.TierStaff {
		t.Error("reserved STAFF tier assigned to a customer")
	}
	if aggs[0].Tier != models.TierBronze {
		t.Errorf("Tier = %q, want BRONZE", aggs[0].Tier)
	}
}

func TestAssignTier_NoTierBelowAllThresholds(t *testing.T) {
	cfg := models.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[models.Tier]models.TierBenefits{
			models.TierSilver: {PointsThreshold: 200},
			models.TierGold:   {PointsThreshold: 500},
		},
	}
	if got := AssignTier(150, cfg); got != "" {
		t.Errorf("AssignTier(150) = %q, want none", got)
	}
	if got := AssignTier(200, cfg); got != models.TierSilver {
		t.Errorf("AssignTier(200) = %q, want SILVER", got)
	}
}

func TestTierProgress(t *testing.T) {
	cfg := threeTierConfig()

	tests := []struct {
		name        string
		points      int
		wantCurrent models.Tier
		wantNext    models.Tier
		wantPercent float64
		wantNeeded  int
		wantMax     bool
	}{
		{
			name:        "silver partway to gold",
			points:      345,
			wantCurrent: models.TierSilver,
			wantNext:    models.TierGold,
			wantPercent: (345.0 - 200.0) / (500.0 - 200.0) * 100,
			wantNeeded:  155,
		},
		{
			name:        "bronze just started",
			points:      0,
			wantCurrent: models.TierBronze,
			wantNext:    models.TierSilver,
			wantPercent: 0,
			wantNeeded:  200,
		},
		{
			name:        "top tier reached",
			points:      1200,
			wantCurrent: models.TierGold,
			wantPercent: 100,
			wantNeeded:  0,
			wantMax:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TierProgress(tt.points, cfg)
			if got.CurrentTier != tt.wantCurrent {
				t.Errorf("CurrentTier = %q, want %q", got.CurrentTier, tt.wantCurrent)
			}
			if got.NextTier != tt.wantNext {
				t.Errorf("NextTier = %q, want %q", got.NextTier, tt.wantNext)
			}
			if !almostEqual(got.ProgressPercent, tt.wantPercent) {
				t.Errorf("ProgressPercent = %v, want %v", got.ProgressPercent, tt.wantPercent)
			}
			if got.PointsNeeded != tt.wantNeeded {
				t.Errorf("PointsNeeded = %d, want %d", got.PointsNeeded, tt.wantNeeded)
			}
			if got.MaxTierReached != tt.wantMax {
				t.Errorf("MaxTierReached = %v, want %v", got.MaxTierReached, tt.wantMax)
			}
		})
	}
}

func TestTierProgress_EqualThresholdsMisconfiguration(t *testing.T) {
	cfg := models.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[models.Tier]models.TierBenefits{
			models.TierBronze: {PointsThreshold: 100},
			models.TierSilver: {PointsThreshold: 100},
		},
	}
	// Equal thresholds give a zero gap; the guard must saturate instead of
	// dividing by zero.
	got := TierProgress(100, cfg)
	if got.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %v, want 100", got.ProgressPercent)
	}
	if got.PointsNeeded != 0 {
		t.Errorf("PointsNeeded = %d, want 0", got.PointsNeeded)
	}
}

func TestTierProgress_NegativeBalanceZeroThreshold(t *testing.T) {
	cfg := models.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[models.Tier]models.TierBenefits{
			models.TierBronze: {PointsThreshold: 0},
			models.TierSilver: {PointsThreshold: 100},
		},
	}
	// A negative ledger balance sits below even the zero-threshold tier, so
	// the distance to the next tier is zero and the saturation path, not a
	// division, must produce the result.
	got := TierProgress(-5, cfg)
	if got.CurrentTier != "" {
		t.Errorf("CurrentTier = %q, want none", got.CurrentTier)
	}
	if got.NextTier != models.TierBronze {
		t.Errorf("NextTier = %q, want BRONZE", got.NextTier)
	}
	if got.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %v, want 100", got.ProgressPercent)
	}
	if got.PointsNeeded != 0 {
		t.Errorf("PointsNeeded = %d, want 0", got.PointsNeeded)
	}
}

func TestTierProgress_NoTierYet(t *testing.T) {
	cfg := models.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[models.Tier]models.TierBenefits{
			models.TierSilver: {PointsThreshold: 200},
		},
	}
	got := TierProgress(50, cfg)
	if got.CurrentTier != "" {
		t.Errorf("CurrentTier = %q, want none", got.CurrentTier)
	}
	if got.NextTier != models.TierSilver {
		t.Errorf("NextTier = %q, want SILVER", got.NextTier)
	}
	if !almostEqual(got.ProgressPercent, 25) {
		t.Errorf("ProgressPercent = %v, want 25", got.ProgressPercent)
	}
	if got.PointsNeeded != 150 {
		t.Errorf("PointsNeeded = %d, want 150", got.PointsNeeded)
	}
}

func TestApplyAdjustment_Additive(t *testing.T) {
	a := ApplyAdjustment(nil, "0722", 50)
	a = ApplyAdjustment(a, "0722", -20)

	b := ApplyAdjustment(nil, "0722", 30)

	if a["0722"] != b["0722"] {
		t.Errorf("+50 then -20 gave %d, +30 directly gave %d", a["0722"], b["0722"])
	}
	if a["0722"] != 30 {
		t.Errorf("ledger balance = %d, want 30", a["0722"])
	}
}

func TestApplyAdjustment_CreatesEntryAtZero(t *testing.T) {
	ledger := map[string]int{}
	ledger = ApplyAdjustment(ledger, "0788", -10)
	if ledger["0788"] != -10 {
		t.Errorf("ledger[0788] = %d, want -10", ledger["0788"])
	}
}
