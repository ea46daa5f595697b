package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"
	"garage-backend/internal/storage"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService generates CSV and PDF exports. Every figure in a report
// comes out of the billing engine, the same as the screens.
type ReportService struct {
	Estimates *EstimateService
	Loyalty   *LoyaltyService
	Archiver  *storage.Archiver
}

func NewReportService(estimates *EstimateService, loyalty *LoyaltyService) *ReportService {
	return &ReportService{Estimates: estimates, Loyalty: loyalty}
}

// SetArchiver enables best-effort upload of generated reports
func (s *ReportService) SetArchiver(a *storage.Archiver) {
	s.Archiver = a
}

// LoyaltyCSV exports the current client aggregates
func (s *ReportService) LoyaltyCSV(ctx context.Context) ([]byte, error) {
	aggs, err := s.Loyalty.ClientAggregates(ctx, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"name", "phone", "email", "total_spent", "visit_count", "avg_spent", "loyalty_points", "tier"})
	for _, a := range aggs {
		tier := string(a.Tier)
		if tier == "" {
			tier = "STANDARD"
		}
		w.Write([]string{
			a.Name,
			a.Phone,
			a.Email,
			strconv.FormatFloat(a.TotalSpent, 'f', 2, 64),
			strconv.Itoa(a.VisitCount),
			strconv.FormatFloat(a.AvgSpent, 'f', 2, 64),
			strconv.Itoa(a.LoyaltyPoints),
			tier,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.archive(ctx, fmt.Sprintf("loyalty_%s.csv", time.Now().Format("20060102_150405")), "text/csv", buf.Bytes())
	return buf.Bytes(), nil
}

// RevenueCSV exports one row per completed estimate with its engine totals
func (s *ReportService) RevenueCSV(ctx context.Context) ([]byte, error) {
	estimates, err := s.Estimates.ListEstimates(ctx, &models.EstimateFilter{Status: models.EstimateStatusCompleted})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"number", "customer", "phone", "total", "paid", "balance_due", "created_at"})
	for _, est := range estimates {
		w.Write([]string{
			est.Number,
			est.CustomerName,
			est.CustomerPhone,
			strconv.FormatFloat(est.Totals.Total, 'f', 2, 64),
			strconv.FormatFloat(est.Totals.TotalPaid, 'f', 2, 64),
			strconv.FormatFloat(est.Totals.BalanceDue, 'f', 2, 64),
			est.CreatedAt.Format("2006-01-02"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.archive(ctx, fmt.Sprintf("revenue_%s.csv", time.Now().Format("20060102_150405")), "text/csv", buf.Bytes())
	return buf.Bytes(), nil
}

// EstimatePDF renders a printable estimate with full line items and totals
func (s *ReportService) EstimatePDF(ctx context.Context, estimateID int) ([]byte, error) {
	est, err := s.Estimates.GetEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	totals := billing.ComputeEstimateTotals(&est.Estimate)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Garage - Service Estimate", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Estimate %s - %s", est.Number, est.CreatedAt.Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Customer", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", est.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", est.CustomerPhone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Vehicle: %s %s", est.VehicleMake, est.VehicleModel), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Plate: %s", est.VehiclePlate), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	if len(est.Parts) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Parts", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(100, 7, "Item", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Amount", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, p := range est.Parts {
			pdf.CellFormat(100, 6, p.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, money(p.Price), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, strconv.FormatFloat(p.Quantity, 'f', -1, 64), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, money(p.Price*p.Quantity), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(est.Labor) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Labor", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(100, 7, "Description", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Rate", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Hours", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Amount", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, l := range est.Labor {
			pdf.CellFormat(100, 6, l.Description, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, money(l.Rate), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, strconv.FormatFloat(l.Hours, 'f', -1, 64), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, money(l.Rate*l.Hours), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 11)
	summary := [][2]string{
		{"Parts subtotal", money(totals.PartsSubtotal)},
		{"Parts discount", "-" + money(totals.PartsDiscountAmount)},
		{"Labor subtotal", money(totals.LaborSubtotal)},
		{"Labor discount", "-" + money(totals.LaborDiscountAmount)},
		{"Total", money(totals.Total)},
		{"Paid", money(totals.TotalPaid)},
		{"Balance due", money(totals.BalanceDue)},
	}
	for _, row := range summary {
		pdf.CellFormat(130, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, row[1], "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	s.archive(ctx, fmt.Sprintf("estimate_%s.pdf", est.Number), "application/pdf", buf.Bytes())
	return buf.Bytes(), nil
}

func (s *ReportService) archive(ctx context.Context, name, contentType string, data []byte) {
	if s.Archiver == nil {
		return
	}
	key, err := s.Archiver.Upload(ctx, name, contentType, data)
	if err != nil {
		log.Printf("[Reports] Archive upload failed: %v", err)
		return
	}
	log.Printf("[Reports] Archived %s", key)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
