package billing

import (
	"math"
	"sort"
	"strings"

	"garage-backend/internal/models"
)

// AggregateFilter narrows the aggregate list after computation. Filtering
// never changes the computed figures of the rows that remain.
type AggregateFilter struct {
	// Query is a free-text match against name, phone and email.
	Query string
	// Tier, when set, keeps only customers currently in that exact tier.
	Tier models.Tier
}

// rankedTier pairs a tier with its threshold for ordered walks.
type rankedTier struct {
	Tier      models.Tier
	Threshold int
}

// customerTiers returns the assignable tiers sorted ascending by threshold.
// The reserved STAFF tier is never part of customer assignment. Equal
// thresholds (a misconfiguration the engine tolerates) are ordered by tier
// name so the walk stays deterministic.
func customerTiers(cfg models.LoyaltyConfig) []rankedTier {
	ranked := make([]rankedTier, 0, len(cfg.Tiers))
	for tier, b := range cfg.Tiers {
		if tier == models.TierStaff {
			continue
		}
		ranked = append(ranked, rankedTier{Tier: tier, Threshold: b.PointsThreshold})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Threshold != ranked[j].Threshold {
			return ranked[i].Threshold < ranked[j].Threshold
		}
		return ranked[i].Tier < ranked[j].Tier
	})
	return ranked
}

// AssignTier returns the highest tier whose threshold the point balance
// meets, or "" when no threshold is met (rendered as the baseline label,
// not an error).
func AssignTier(points int, cfg models.LoyaltyConfig) models.Tier {
	ranked := customerTiers(cfg)
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].Threshold <= points {
			return ranked[i].Tier
		}
	}
	return ""
}

// ComputeClientAggregates derives per-customer summaries from a point-in-time
// snapshot of estimates, the loyalty config and the summed adjustment ledger.
//
// Only COMPLETED estimates count, and estimates without a customer phone are
// silently dropped: phone is the join key, so a record lacking it cannot be
// attributed to anyone. Loyalty accrues on the billed (discounted) total,
// independent of whether the balance was ever paid. Results are ordered by
// points descending, ties keeping first-seen order.
func ComputeClientAggregates(estimates []*models.Estimate, cfg models.LoyaltyConfig, adjustments map[string]int, filter *AggregateFilter) []models.ClientAggregate {
	byPhone := make(map[string]*models.ClientAggregate)
	order := make([]string, 0)

	for _, est := range estimates {
		if est.Status != models.EstimateStatusCompleted || est.CustomerPhone == "" {
			continue
		}
		agg, ok := byPhone[est.CustomerPhone]
		if !ok {
			agg = &models.ClientAggregate{Phone: est.CustomerPhone}
			byPhone[est.CustomerPhone] = agg
			order = append(order, est.CustomerPhone)
		}
		if est.CustomerName != "" {
			agg.Name = est.CustomerName
		}
		if est.CustomerEmail != "" {
			agg.Email = est.CustomerEmail
		}
		agg.TotalSpent += ComputeEstimateTotals(est).Total
		agg.VisitCount++
	}

	result := make([]models.ClientAggregate, 0, len(order))
	for _, phone := range order {
		agg := byPhone[phone]
		// VisitCount > 0 by construction, the division is safe.
		agg.AvgSpent = agg.TotalSpent / float64(agg.VisitCount)
		agg.LoyaltyPoints = int(math.Floor(agg.TotalSpent*cfg.PointsPerCurrencyUnit)) + adjustments[phone]
		agg.Tier = AssignTier(agg.LoyaltyPoints, cfg)
		result = append(result, *agg)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LoyaltyPoints > result[j].LoyaltyPoints
	})

	if filter != nil {
		result = applyFilter(result, filter)
	}
	return result
}

// applyFilter runs after aggregation so the surviving rows keep the exact
// figures they were computed with.
func applyFilter(aggs []models.ClientAggregate, filter *AggregateFilter) []models.ClientAggregate {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	filtered := aggs[:0]
	for _, agg := range aggs {
		if filter.Tier != "" && agg.Tier != filter.Tier {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(agg.Name), query) &&
			!strings.Contains(strings.ToLower(agg.Phone), query) &&
			!strings.Contains(strings.ToLower(agg.Email), query) {
			continue
		}
		filtered = append(filtered, agg)
	}
	return filtered
}

// TierProgress reports how far a point balance is from the next tier.
//
// A non-positive gap between adjacent thresholds (equal or descending
// thresholds in a misconfigured table) short-circuits to 100% / 0 needed
// instead of dividing by zero. At the top tier it reports max reached.
func TierProgress(points int, cfg models.LoyaltyConfig) models.TierProgressInfo {
	ranked := customerTiers(cfg)
	current := AssignTier(points, cfg)

	currentThreshold := 0
	next := -1
	if current == "" {
		// Below every threshold: the lowest tier is the one to chase.
		if len(ranked) > 0 {
			next = 0
		}
	} else {
		for i, rt := range ranked {
			if rt.Tier == current {
				currentThreshold = rt.Threshold
				if i+1 < len(ranked) {
					next = i + 1
				}
				break
			}
		}
	}

	info := models.TierProgressInfo{CurrentTier: current}
	if next == -1 {
		info.MaxTierReached = true
		info.ProgressPercent = 100
		info.PointsNeeded = 0
		return info
	}

	info.NextTier = ranked[next].Tier
	gap := ranked[next].Threshold - currentThreshold
	if gap <= 0 {
		info.ProgressPercent = 100
		info.PointsNeeded = 0
		return info
	}

	percent := float64(points-currentThreshold) / float64(gap) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	info.ProgressPercent = percent

	needed := ranked[next].Threshold - points
	if needed < 0 {
		needed = 0
	}
	info.PointsNeeded = needed
	return info
}

// ApplyAdjustment appends a signed point delta to the in-memory ledger,
// creating the entry at zero if absent. Adjustments are additive and
// commutative: +50 then -20 equals +30. They are never an absolute
// overwrite, because the displayed balance also contains the
// transaction-derived component the admin does not control.
func ApplyAdjustment(ledger map[string]int, phone string, delta int) map[string]int {
	if ledger == nil {
		ledger = make(map[string]int)
	}
	ledger[phone] += delta
	return ledger
}
