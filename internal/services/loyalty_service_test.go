package services

import (
	"context"
	"testing"

	"garage-backend/internal/models"
)

type fakeEstimateSource struct {
	estimates []*models.Estimate
}

func (f *fakeEstimateSource) List(ctx context.Context, filter *models.EstimateFilter) ([]*models.Estimate, error) {
	out := make([]*models.Estimate, 0, len(f.estimates))
	for _, est := range f.estimates {
		if filter != nil && filter.Status != "" && est.Status != filter.Status {
			continue
		}
		out = append(out, est)
	}
	return out, nil
}

type fakeAdjustmentRepo struct {
	entries []models.PointAdjustment
	nextID  int
}

func (f *fakeAdjustmentRepo) Append(ctx context.Context, phone string, delta int, reason string, userID int) (*models.PointAdjustment, error) {
	f.nextID++
	adj := models.PointAdjustment{
		ID:              f.nextID,
		CustomerPhone:   phone,
		Delta:           delta,
		Reason:          reason,
		CreatedByUserID: userID,
	}
	f.entries = append(f.entries, adj)
	return &adj, nil
}

func (f *fakeAdjustmentRepo) Get(ctx context.Context, phone string) (int, error) {
	total := 0
	for _, e := range f.entries {
		if e.CustomerPhone == phone {
			total += e.Delta
		}
	}
	return total, nil
}

func (f *fakeAdjustmentRepo) All(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, e := range f.entries {
		out[e.CustomerPhone] += e.Delta
	}
	return out, nil
}

func (f *fakeAdjustmentRepo) History(ctx context.Context, phone string, limit int) ([]models.PointAdjustment, error) {
	var out []models.PointAdjustment
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].CustomerPhone == phone {
			out = append(out, f.entries[i])
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeConfigSource struct {
	cfg models.LoyaltyConfig
}

func (f *fakeConfigSource) LoyaltyConfig(ctx context.Context) (models.LoyaltyConfig, error) {
	return f.cfg, nil
}

func completedEstimate(phone, name string, total float64) *models.Estimate {
	return &models.Estimate{
		CustomerName:  name,
		CustomerPhone: phone,
		Status:        models.EstimateStatusCompleted,
		Parts:         []models.PartLine{{Name: "part", Price: total, Quantity: 1}},
	}
}

func newTestLoyaltyService(estimates []*models.Estimate, adjustments *fakeAdjustmentRepo) *LoyaltyService {
	if adjustments == nil {
		adjustments = &fakeAdjustmentRepo{}
	}
	return NewLoyaltyService(
		&fakeEstimateSource{estimates: estimates},
		adjustments,
		&fakeConfigSource{cfg: models.DefaultLoyaltyConfig()},
	)
}

func TestClientAggregatesIncludesAdjustments(t *testing.T) {
	adjustments := &fakeAdjustmentRepo{}
	svc := newTestLoyaltyService([]*models.Estimate{
		completedEstimate("9000000001", "Asha", 250),
	}, adjustments)

	if _, err := svc.AdjustPoints(context.Background(), "9000000001", 40, "goodwill", 1); err != nil {
		t.Fatalf("AdjustPoints: %v", err)
	}

	aggs, err := svc.ClientAggregates(context.Background(), nil)
	if err != nil {
		t.Fatalf("ClientAggregates: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	if aggs[0].LoyaltyPoints != 290 {
		t.Errorf("points = %d, want 290", aggs[0].LoyaltyPoints)
	}
	if aggs[0].Tier != models.TierSilver {
		t.Errorf("tier = %q, want SILVER", aggs[0].Tier)
	}
}

func TestClientDetailAdjustmentOnlyCustomer(t *testing.T) {
	adjustments := &fakeAdjustmentRepo{}
	svc := newTestLoyaltyService(nil, adjustments)

	if _, err := svc.AdjustPoints(context.Background(), "9000000002", 220, "migrated balance", 1); err != nil {
		t.Fatalf("AdjustPoints: %v", err)
	}

	detail, err := svc.ClientDetail(context.Background(), "9000000002")
	if err != nil {
		t.Fatalf("ClientDetail: %v", err)
	}
	if detail == nil {
		t.Fatal("expected detail for adjustment-only customer, got nil")
	}
	if detail.LoyaltyPoints != 220 {
		t.Errorf("points = %d, want 220", detail.LoyaltyPoints)
	}
	if detail.Tier != models.TierSilver {
		t.Errorf("tier = %q, want SILVER", detail.Tier)
	}
	if len(detail.Adjustments) != 1 {
		t.Errorf("history length = %d, want 1", len(detail.Adjustments))
	}
}

func TestClientDetailUnknownPhone(t *testing.T) {
	svc := newTestLoyaltyService(nil, nil)

	detail, err := svc.ClientDetail(context.Background(), "9999999999")
	if err != nil {
		t.Fatalf("ClientDetail: %v", err)
	}
	if detail != nil {
		t.Errorf("expected nil detail for unknown phone, got %+v", detail)
	}
}

func TestAdjustPointsValidation(t *testing.T) {
	svc := newTestLoyaltyService(nil, nil)

	if _, err := svc.AdjustPoints(context.Background(), "", 10, "x", 1); err == nil {
		t.Error("expected error for empty phone")
	}
	if _, err := svc.AdjustPoints(context.Background(), "9000000003", 0, "x", 1); err == nil {
		t.Error("expected error for zero delta")
	}
}

func TestAdjustPointsDeltasAccumulate(t *testing.T) {
	adjustments := &fakeAdjustmentRepo{}
	svc := newTestLoyaltyService(nil, adjustments)

	ctx := context.Background()
	svc.AdjustPoints(ctx, "9000000004", 100, "promo", 1)
	svc.AdjustPoints(ctx, "9000000004", -30, "correction", 1)
	svc.AdjustPoints(ctx, "9000000004", 150, "promo", 2)

	detail, err := svc.ClientDetail(ctx, "9000000004")
	if err != nil {
		t.Fatalf("ClientDetail: %v", err)
	}
	if detail.LoyaltyPoints != 220 {
		t.Errorf("points = %d, want 220", detail.LoyaltyPoints)
	}
	if len(detail.Adjustments) != 3 {
		t.Errorf("history length = %d, want 3", len(detail.Adjustments))
	}
}
