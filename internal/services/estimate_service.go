package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage-backend/internal/billing"
	"garage-backend/internal/cache"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"

	"github.com/google/uuid"
)

// StatusNotifier receives estimate status changes for the public board feed
type StatusNotifier interface {
	BroadcastStatus(row models.StatusBoardRow)
}

type EstimateService struct {
	Repo     *repositories.EstimateRepository
	notifier StatusNotifier
}

func NewEstimateService(repo *repositories.EstimateRepository) *EstimateService {
	return &EstimateService{Repo: repo}
}

// SetNotifier wires the websocket hub for status broadcasts
func (s *EstimateService) SetNotifier(n StatusNotifier) {
	s.notifier = n
}

func (s *EstimateService) CreateEstimate(ctx context.Context, req *models.CreateEstimateRequest) (*models.EstimateWithTotals, error) {
	est := &models.Estimate{
		Number:               newEstimateNumber(),
		CustomerName:         req.CustomerName,
		CustomerPhone:        req.CustomerPhone,
		CustomerEmail:        req.CustomerEmail,
		VehicleMake:          req.VehicleMake,
		VehicleModel:         req.VehicleModel,
		VehiclePlate:         req.VehiclePlate,
		Status:               models.EstimateStatusDraft,
		Parts:                req.Parts,
		Labor:                req.Labor,
		PartsDiscountPercent: req.PartsDiscountPercent,
		LaborDiscountPercent: req.LaborDiscountPercent,
		Notes:                req.Notes,
	}
	if err := s.Repo.Create(ctx, est); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.StatusBoardKey)
	return withTotals(est), nil
}

func (s *EstimateService) GetEstimate(ctx context.Context, id int) (*models.EstimateWithTotals, error) {
	est, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return withTotals(est), nil
}

func (s *EstimateService) GetEstimateByNumber(ctx context.Context, number string) (*models.EstimateWithTotals, error) {
	est, err := s.Repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return withTotals(est), nil
}

func (s *EstimateService) ListEstimates(ctx context.Context, filter *models.EstimateFilter) ([]*models.EstimateWithTotals, error) {
	estimates, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]*models.EstimateWithTotals, 0, len(estimates))
	for _, est := range estimates {
		result = append(result, withTotals(est))
	}
	return result, nil
}

func (s *EstimateService) UpdateEstimate(ctx context.Context, id int, req *models.UpdateEstimateRequest) (*models.EstimateWithTotals, error) {
	est, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	est.CustomerName = req.CustomerName
	est.CustomerPhone = req.CustomerPhone
	est.CustomerEmail = req.CustomerEmail
	est.VehicleMake = req.VehicleMake
	est.VehicleModel = req.VehicleModel
	est.VehiclePlate = req.VehiclePlate
	est.Parts = req.Parts
	est.Labor = req.Labor
	est.PartsDiscountPercent = req.PartsDiscountPercent
	est.LaborDiscountPercent = req.LaborDiscountPercent
	est.Notes = req.Notes

	if err := s.Repo.Update(ctx, est); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.StatusBoardKey)
	return withTotals(est), nil
}

// SetStatus transitions an estimate and pushes the change to the public board
func (s *EstimateService) SetStatus(ctx context.Context, id int, status models.EstimateStatus) (*models.EstimateWithTotals, error) {
	switch status {
	case models.EstimateStatusDraft, models.EstimateStatusAwaitingPayment, models.EstimateStatusCompleted:
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}

	if err := s.Repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	est, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.StatusBoardKey)

	if s.notifier != nil {
		s.notifier.BroadcastStatus(models.StatusBoardRow{
			Number:       est.Number,
			VehicleMake:  est.VehicleMake,
			VehicleModel: est.VehicleModel,
			VehiclePlate: est.VehiclePlate,
			Status:       est.Status,
			UpdatedAt:    est.UpdatedAt,
		})
	}
	return withTotals(est), nil
}

// RecordPayment appends a payment row to an estimate and returns the
// refreshed figures.
func (s *EstimateService) RecordPayment(ctx context.Context, estimateID int, req *models.RecordPaymentRequest) (*models.EstimateWithTotals, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	method := req.Method
	if method == "" {
		method = "cash"
	}

	payment := &models.Payment{
		EstimateID:    estimateID,
		Amount:        req.Amount,
		Method:        method,
		ReceiptNumber: newReceiptNumber(),
	}
	if err := s.Repo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}
	return s.GetEstimate(ctx, estimateID)
}

func (s *EstimateService) DeleteEstimate(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.Invalidate(context.Background(), cache.StatusBoardKey)
	return nil
}

// StatusBoard returns the public display rows: active work only, no money.
func (s *EstimateService) StatusBoard(ctx context.Context) ([]models.StatusBoardRow, error) {
	var cached []models.StatusBoardRow
	if cache.GetJSON(ctx, cache.StatusBoardKey, &cached) {
		return cached, nil
	}

	estimates, err := s.Repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]models.StatusBoardRow, 0, len(estimates))
	for _, est := range estimates {
		if est.Status == models.EstimateStatusCompleted {
			continue
		}
		rows = append(rows, models.StatusBoardRow{
			Number:       est.Number,
			VehicleMake:  est.VehicleMake,
			VehicleModel: est.VehicleModel,
			VehiclePlate: est.VehiclePlate,
			Status:       est.Status,
			UpdatedAt:    est.UpdatedAt,
		})
	}

	cache.SetJSON(ctx, cache.StatusBoardKey, rows, time.Minute)
	return rows, nil
}

// PublicStatus is the unauthenticated single-estimate lookup: status plus
// the balance due, both produced by the same engine the dashboard uses.
type PublicStatus struct {
	Number       string                `json:"number"`
	VehicleMake  string                `json:"vehicle_make"`
	VehicleModel string                `json:"vehicle_model"`
	Status       models.EstimateStatus `json:"status"`
	BalanceDue   float64               `json:"balance_due"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func (s *EstimateService) PublicStatus(ctx context.Context, number string) (*PublicStatus, error) {
	est, err := s.Repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	totals := billing.ComputeEstimateTotals(est)
	return &PublicStatus{
		Number:       est.Number,
		VehicleMake:  est.VehicleMake,
		VehicleModel: est.VehicleModel,
		Status:       est.Status,
		BalanceDue:   totals.BalanceDue,
		UpdatedAt:    est.UpdatedAt,
	}, nil
}

// withTotals attaches the engine's figures. This is the only place the API
// layer derives money from an estimate.
func withTotals(est *models.Estimate) *models.EstimateWithTotals {
	return &models.EstimateWithTotals{
		Estimate: *est,
		Totals:   billing.ComputeEstimateTotals(est),
	}
}

// newEstimateNumber generates a short display number like EST-1A2B3C4D
func newEstimateNumber() string {
	return "EST-" + strings.ToUpper(uuid.NewString()[:8])
}

// newReceiptNumber generates a receipt number like RCP-1A2B3C4D
func newReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}
