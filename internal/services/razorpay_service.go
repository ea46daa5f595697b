package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"garage-backend/internal/billing"
	"garage-backend/internal/models"

	razorpay "github.com/razorpay/razorpay-go"
)

// EstimatePayments is the slice of the estimate service online payments need
type EstimatePayments interface {
	GetEstimate(ctx context.Context, id int) (*models.EstimateWithTotals, error)
	RecordPayment(ctx context.Context, estimateID int, req *models.RecordPaymentRequest) (*models.EstimateWithTotals, error)
}

// PaymentOrderStore persists pending orders between checkout and verification
type PaymentOrderStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	MarkConsumed(ctx context.Context, orderID string) error
}

// RazorpayService lets portal customers pay an estimate's outstanding
// balance online. The amount charged is always the engine's BalanceDue,
// fixed into a stored order at checkout; verification credits that stored
// amount, so nothing the client sends can change what gets recorded.
type RazorpayService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	Estimates     EstimatePayments
	Orders        PaymentOrderStore
}

func NewRazorpayService(keyID, keySecret, webhookSecret string, estimates EstimatePayments, orders PaymentOrderStore) *RazorpayService {
	return &RazorpayService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		Estimates:     estimates,
		Orders:        orders,
	}
}

// Enabled reports whether payment keys are configured
func (s *RazorpayService) Enabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

// OrderResponse is what the portal checkout needs to open Razorpay
type OrderResponse struct {
	OrderID     string  `json:"order_id"`
	KeyID       string  `json:"key_id"`
	Amount      float64 `json:"amount"`
	AmountPaise int     `json:"amount_paise"`
	Currency    string  `json:"currency"`
}

// CreateOrder creates a payment order for the estimate's current balance due
// and stores it as a pending order pinned to that amount.
func (s *RazorpayService) CreateOrder(ctx context.Context, phone string, estimateID int) (*OrderResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("online payments are currently disabled")
	}

	est, err := s.Estimates.GetEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est.CustomerPhone != phone {
		return nil, ErrNotOwned
	}
	if est.Status == models.EstimateStatusDraft {
		return nil, fmt.Errorf("estimate is still a draft")
	}

	due := billing.ComputeEstimateTotals(&est.Estimate).BalanceDue
	if due <= 0 {
		return nil, fmt.Errorf("nothing due on this estimate")
	}

	amountPaise := int(due * 100)
	client := razorpay.NewClient(s.keyID, s.keySecret)
	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  est.Number,
		"notes": map[string]interface{}{
			"estimate_id":    est.ID,
			"customer_phone": est.CustomerPhone,
		},
	}

	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, _ := order["id"].(string)
	if err := s.Orders.Create(ctx, &models.PaymentOrder{
		RazorpayOrderID: orderID,
		EstimateID:      est.ID,
		CustomerPhone:   est.CustomerPhone,
		AmountPaise:     amountPaise,
	}); err != nil {
		return nil, err
	}

	return &OrderResponse{
		OrderID:     orderID,
		KeyID:       s.keyID,
		Amount:      due,
		AmountPaise: amountPaise,
		Currency:    "INR",
	}, nil
}

// VerifyPaymentRequest is the checkout callback payload
type VerifyPaymentRequest struct {
	EstimateID        int    `json:"estimate_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyAndRecord checks the checkout signature against the stored pending
// order and credits the order's amount. The order is consumed in the same
// step, so replaying a valid signature records nothing twice.
func (s *RazorpayService) VerifyAndRecord(ctx context.Context, phone string, req *VerifyPaymentRequest) (*models.EstimateWithTotals, error) {
	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, fmt.Errorf("payment signature verification failed")
	}

	order, err := s.Orders.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("unknown payment order: %w", err)
	}
	if order.CustomerPhone != phone {
		return nil, ErrNotOwned
	}
	if order.EstimateID != req.EstimateID {
		return nil, fmt.Errorf("payment order does not belong to this estimate")
	}

	if err := s.Orders.MarkConsumed(ctx, req.RazorpayOrderID); err != nil {
		return nil, err
	}

	return s.Estimates.RecordPayment(ctx, order.EstimateID, &models.RecordPaymentRequest{
		Amount: float64(order.AmountPaise) / 100,
		Method: "online",
	})
}

// VerifyWebhookSignature verifies a webhook body signature
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
