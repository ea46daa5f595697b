package services

import (
	"context"
	"fmt"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
)

// EstimateSource provides the point-in-time estimate snapshot the engine
// aggregates over.
type EstimateSource interface {
	List(ctx context.Context, filter *models.EstimateFilter) ([]*models.Estimate, error)
}

// AdjustmentRepo is the adjustment ledger's persistence boundary. The ledger
// has its own lifecycle: it only ever grows by appended deltas and is never
// recomputed from estimates. Append is the sole write.
type AdjustmentRepo interface {
	Append(ctx context.Context, phone string, delta int, reason string, userID int) (*models.PointAdjustment, error)
	Get(ctx context.Context, phone string) (int, error)
	All(ctx context.Context) (map[string]int, error)
	History(ctx context.Context, phone string, limit int) ([]models.PointAdjustment, error)
}

// ConfigSource provides the current loyalty configuration.
type ConfigSource interface {
	LoyaltyConfig(ctx context.Context) (models.LoyaltyConfig, error)
}

// LoyaltyService assembles engine inputs (estimates, config, summed ledger)
// and delegates all computation to the billing package. It holds no state
// between calls, so edits to historical estimates show up in the very next
// read.
type LoyaltyService struct {
	Estimates   EstimateSource
	Adjustments AdjustmentRepo
	Config      ConfigSource
}

func NewLoyaltyService(estimates EstimateSource, adjustments AdjustmentRepo, config ConfigSource) *LoyaltyService {
	return &LoyaltyService{Estimates: estimates, Adjustments: adjustments, Config: config}
}

// ClientAggregates computes the customer summary list
func (s *LoyaltyService) ClientAggregates(ctx context.Context, filter *billing.AggregateFilter) ([]models.ClientAggregate, error) {
	estimates, cfg, ledger, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return billing.ComputeClientAggregates(estimates, cfg, ledger, filter), nil
}

// ClientDetail is the per-customer detail view: the aggregate row plus
// next-tier progress and the manual adjustment history.
type ClientDetail struct {
	models.ClientAggregate
	Progress    models.TierProgressInfo  `json:"progress"`
	Adjustments []models.PointAdjustment `json:"adjustments"`
}

// ClientDetail returns the detail view for one customer phone, or nil when
// the customer has no completed estimates and no adjustments.
func (s *LoyaltyService) ClientDetail(ctx context.Context, phone string) (*ClientDetail, error) {
	estimates, cfg, ledger, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	aggs := billing.ComputeClientAggregates(estimates, cfg, ledger, nil)
	var found *models.ClientAggregate
	for i := range aggs {
		if aggs[i].Phone == phone {
			found = &aggs[i]
			break
		}
	}
	if found == nil {
		// No completed estimates. The customer may still carry a manual
		// adjustment balance worth showing.
		delta, ok := ledger[phone]
		if !ok {
			return nil, nil
		}
		found = &models.ClientAggregate{
			Phone:         phone,
			LoyaltyPoints: delta,
			Tier:          billing.AssignTier(delta, cfg),
		}
	}

	history, err := s.Adjustments.History(ctx, phone, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustment history: %w", err)
	}

	return &ClientDetail{
		ClientAggregate: *found,
		Progress:        billing.TierProgress(found.LoyaltyPoints, cfg),
		Adjustments:     history,
	}, nil
}

// AdjustPoints appends a signed delta to the customer's adjustment ledger.
// Deltas are additive and commutative; there is deliberately no way to set
// an absolute balance, because the displayed points include the
// estimate-derived component the admin does not control.
func (s *LoyaltyService) AdjustPoints(ctx context.Context, phone string, delta int, reason string, adminUserID int) (*models.PointAdjustment, error) {
	if phone == "" {
		return nil, fmt.Errorf("customer phone is required")
	}
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}
	return s.Adjustments.Append(ctx, phone, delta, reason, adminUserID)
}

func (s *LoyaltyService) snapshot(ctx context.Context) ([]*models.Estimate, models.LoyaltyConfig, map[string]int, error) {
	estimates, err := s.Estimates.List(ctx, &models.EstimateFilter{Status: models.EstimateStatusCompleted})
	if err != nil {
		return nil, models.LoyaltyConfig{}, nil, fmt.Errorf("failed to load estimates: %w", err)
	}
	cfg, err := s.Config.LoyaltyConfig(ctx)
	if err != nil {
		return nil, models.LoyaltyConfig{}, nil, fmt.Errorf("failed to load loyalty config: %w", err)
	}
	ledger, err := s.Adjustments.All(ctx)
	if err != nil {
		return nil, models.LoyaltyConfig{}, nil, fmt.Errorf("failed to load adjustment ledger: %w", err)
	}
	return estimates, cfg, ledger, nil
}
