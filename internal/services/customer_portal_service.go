package services

import (
	"context"
	"errors"

	"garage-backend/internal/models"
)

// ErrNotOwned is returned when a customer requests someone else's estimate
var ErrNotOwned = errors.New("estimate does not belong to this customer")

// CustomerPortalService builds the authenticated portal views for one
// customer phone. All figures come from the billing engine; the portal
// never does its own arithmetic.
type CustomerPortalService struct {
	Estimates *EstimateService
	Loyalty   *LoyaltyService
}

func NewCustomerPortalService(estimates *EstimateService, loyalty *LoyaltyService) *CustomerPortalService {
	return &CustomerPortalService{Estimates: estimates, Loyalty: loyalty}
}

// PortalSummary is the portal landing view
type PortalSummary struct {
	Phone          string                       `json:"phone"`
	Estimates      []*models.EstimateWithTotals `json:"estimates"`
	OutstandingDue float64                      `json:"outstanding_due"`
	Loyalty        *ClientDetail                `json:"loyalty,omitempty"`
}

func (s *CustomerPortalService) Summary(ctx context.Context, phone string) (*PortalSummary, error) {
	estimates, err := s.Estimates.ListEstimates(ctx, &models.EstimateFilter{Phone: phone})
	if err != nil {
		return nil, err
	}

	summary := &PortalSummary{Phone: phone, Estimates: estimates}
	for _, est := range estimates {
		if est.Status != models.EstimateStatusDraft && est.Totals.BalanceDue > 0 {
			summary.OutstandingDue += est.Totals.BalanceDue
		}
	}

	detail, err := s.Loyalty.ClientDetail(ctx, phone)
	if err != nil {
		return nil, err
	}
	summary.Loyalty = detail
	return summary, nil
}

// Estimate returns a single estimate if it belongs to the customer
func (s *CustomerPortalService) Estimate(ctx context.Context, phone string, id int) (*models.EstimateWithTotals, error) {
	est, err := s.Estimates.GetEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	if est.CustomerPhone != phone {
		return nil, ErrNotOwned
	}
	return est, nil
}
