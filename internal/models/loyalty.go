package models

import "time"

// Tier is a named loyalty level unlocked at a point threshold
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"

	// TierStaff is reserved for shop employees' own vehicles. It is never
	// assigned from points and is excluded from customer tier ranking.
	TierStaff Tier = "STAFF"
)

// TierBenefits describes what a tier unlocks
type TierBenefits struct {
	PointsThreshold   int     `json:"points_threshold"`
	LaborDiscountRate float64 `json:"labor_discount_rate"` // 0–1
	PartsDiscountRate float64 `json:"parts_discount_rate"` // 0–1
}

// LoyaltyConfig is the tier table plus the accrual rate
type LoyaltyConfig struct {
	PointsPerCurrencyUnit float64               `json:"points_per_currency_unit"`
	Tiers                 map[Tier]TierBenefits `json:"tiers"`
}

// DefaultLoyaltyConfig returns the config used when no setting has been saved
func DefaultLoyaltyConfig() LoyaltyConfig {
	return LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		Tiers: map[Tier]TierBenefits{
			TierBronze:   {PointsThreshold: 0, LaborDiscountRate: 0, PartsDiscountRate: 0},
			TierSilver:   {PointsThreshold: 200, LaborDiscountRate: 0.05, PartsDiscountRate: 0.02},
			TierGold:     {PointsThreshold: 500, LaborDiscountRate: 0.10, PartsDiscountRate: 0.05},
			TierPlatinum: {PointsThreshold: 1500, LaborDiscountRate: 0.15, PartsDiscountRate: 0.08},
			TierStaff:    {PointsThreshold: 0, LaborDiscountRate: 0.50, PartsDiscountRate: 0.25},
		},
	}
}

// PointAdjustment is one manual correction row in the adjustment ledger.
// Rows are append-only; a customer's adjustment balance is the sum of
// their deltas, never an absolute overwrite.
type PointAdjustment struct {
	ID              int       `json:"id"`
	CustomerPhone   string    `json:"customer_phone"`
	Delta           int       `json:"delta"`
	Reason          string    `json:"reason"`
	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdjustPointsRequest represents the request body for a manual point adjustment
type AdjustPointsRequest struct {
	CustomerPhone string `json:"customer_phone"`
	Delta         int    `json:"delta"`
	Reason        string `json:"reason"`
}

// ClientAggregate is a derived summary of one customer's completed estimates.
// It is recomputed from scratch on every read and never persisted.
type ClientAggregate struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	TotalSpent    float64 `json:"total_spent"`
	VisitCount    int     `json:"visit_count"`
	AvgSpent      float64 `json:"avg_spent"`
	LoyaltyPoints int     `json:"loyalty_points"`
	// Tier is empty when the customer has not reached any threshold;
	// surfaces render that as the baseline "Standard" label.
	Tier Tier `json:"tier,omitempty"`
}

// TierProgressInfo describes progress toward the next tier
type TierProgressInfo struct {
	CurrentTier     Tier    `json:"current_tier,omitempty"`
	NextTier        Tier    `json:"next_tier,omitempty"`
	ProgressPercent float64 `json:"progress_percent"`
	PointsNeeded    int     `json:"points_needed"`
	MaxTierReached  bool    `json:"max_tier_reached"`
}
