package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"garage-backend/internal/models"
)

type fakeOrderStore struct {
	orders map[string]*models.PaymentOrder
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.PaymentOrder)}
}

func (f *fakeOrderStore) Create(ctx context.Context, order *models.PaymentOrder) error {
	f.orders[order.RazorpayOrderID] = order
	return nil
}

func (f *fakeOrderStore) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	return order, nil
}

func (f *fakeOrderStore) MarkConsumed(ctx context.Context, orderID string) error {
	order, ok := f.orders[orderID]
	if !ok || order.Consumed {
		return fmt.Errorf("payment order already processed")
	}
	order.Consumed = true
	return nil
}

type fakePaymentRecorder struct {
	estimate *models.EstimateWithTotals
	payments []models.RecordPaymentRequest
}

func (f *fakePaymentRecorder) GetEstimate(ctx context.Context, id int) (*models.EstimateWithTotals, error) {
	return f.estimate, nil
}

func (f *fakePaymentRecorder) RecordPayment(ctx context.Context, estimateID int, req *models.RecordPaymentRequest) (*models.EstimateWithTotals, error) {
	f.payments = append(f.payments, *req)
	return f.estimate, nil
}

const testKeySecret = "test_key_secret"

func checkoutSignature(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(testKeySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func newTestRazorpayService(recorder *fakePaymentRecorder, store *fakeOrderStore) *RazorpayService {
	return NewRazorpayService("test_key_id", testKeySecret, "", recorder, store)
}

func TestVerifyAndRecordCreditsStoredOrderAmount(t *testing.T) {
	recorder := &fakePaymentRecorder{
		estimate: &models.EstimateWithTotals{Estimate: models.Estimate{ID: 7, CustomerPhone: "0722"}},
	}
	store := newFakeOrderStore()
	store.Create(context.Background(), &models.PaymentOrder{
		RazorpayOrderID: "order_abc",
		EstimateID:      7,
		CustomerPhone:   "0722",
		AmountPaise:     25000,
	})
	svc := newTestRazorpayService(recorder, store)

	// The callback carries no amount; whatever the client might add to the
	// body, only the order fixed at checkout decides what gets credited.
	_, err := svc.VerifyAndRecord(context.Background(), "0722", &VerifyPaymentRequest{
		EstimateID:        7,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: checkoutSignature("order_abc", "pay_xyz"),
	})
	if err != nil {
		t.Fatalf("VerifyAndRecord: %v", err)
	}

	if len(recorder.payments) != 1 {
		t.Fatalf("recorded %d payments, want 1", len(recorder.payments))
	}
	if got := recorder.payments[0].Amount; got != 250 {
		t.Errorf("recorded amount = %v, want 250", got)
	}
	if recorder.payments[0].Method != "online" {
		t.Errorf("method = %q, want online", recorder.payments[0].Method)
	}
}

func TestVerifyAndRecordRejectsReplay(t *testing.T) {
	recorder := &fakePaymentRecorder{
		estimate: &models.EstimateWithTotals{Estimate: models.Estimate{ID: 7, CustomerPhone: "0722"}},
	}
	store := newFakeOrderStore()
	store.Create(context.Background(), &models.PaymentOrder{
		RazorpayOrderID: "order_abc",
		EstimateID:      7,
		CustomerPhone:   "0722",
		AmountPaise:     25000,
	})
	svc := newTestRazorpayService(recorder, store)

	req := &VerifyPaymentRequest{
		EstimateID:        7,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: checkoutSignature("order_abc", "pay_xyz"),
	}
	if _, err := svc.VerifyAndRecord(context.Background(), "0722", req); err != nil {
		t.Fatalf("first VerifyAndRecord: %v", err)
	}
	if _, err := svc.VerifyAndRecord(context.Background(), "0722", req); err == nil {
		t.Fatal("replayed callback was accepted")
	}
	if len(recorder.payments) != 1 {
		t.Errorf("recorded %d payments after replay, want 1", len(recorder.payments))
	}
}

func TestVerifyAndRecordRejectsForeignOrder(t *testing.T) {
	recorder := &fakePaymentRecorder{
		estimate: &models.EstimateWithTotals{Estimate: models.Estimate{ID: 7, CustomerPhone: "0722"}},
	}
	store := newFakeOrderStore()
	store.Create(context.Background(), &models.PaymentOrder{
		RazorpayOrderID: "order_abc",
		EstimateID:      7,
		CustomerPhone:   "0722",
		AmountPaise:     25000,
	})
	svc := newTestRazorpayService(recorder, store)

	_, err := svc.VerifyAndRecord(context.Background(), "0733", &VerifyPaymentRequest{
		EstimateID:        7,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: checkoutSignature("order_abc", "pay_xyz"),
	})
	if err != ErrNotOwned {
		t.Errorf("err = %v, want ErrNotOwned", err)
	}
	if len(recorder.payments) != 0 {
		t.Errorf("recorded %d payments, want 0", len(recorder.payments))
	}
}

func TestVerifyAndRecordRejectsMismatchedEstimate(t *testing.T) {
	recorder := &fakePaymentRecorder{
		estimate: &models.EstimateWithTotals{Estimate: models.Estimate{ID: 7, CustomerPhone: "0722"}},
	}
	store := newFakeOrderStore()
	store.Create(context.Background(), &models.PaymentOrder{
		RazorpayOrderID: "order_abc",
		EstimateID:      7,
		CustomerPhone:   "0722",
		AmountPaise:     25000,
	})
	svc := newTestRazorpayService(recorder, store)

	_, err := svc.VerifyAndRecord(context.Background(), "0722", &VerifyPaymentRequest{
		EstimateID:        99,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: checkoutSignature("order_abc", "pay_xyz"),
	})
	if err == nil {
		t.Fatal("mismatched estimate id was accepted")
	}
	if len(recorder.payments) != 0 {
		t.Errorf("recorded %d payments, want 0", len(recorder.payments))
	}
}

func TestVerifyAndRecordRejectsBadSignature(t *testing.T) {
	recorder := &fakePaymentRecorder{
		estimate: &models.EstimateWithTotals{Estimate: models.Estimate{ID: 7, CustomerPhone: "0722"}},
	}
	store := newFakeOrderStore()
	store.Create(context.Background(), &models.PaymentOrder{
		RazorpayOrderID: "order_abc",
		EstimateID:      7,
		CustomerPhone:   "0722",
		AmountPaise:     25000,
	})
	svc := newTestRazorpayService(recorder, store)

	_, err := svc.VerifyAndRecord(context.Background(), "0722", &VerifyPaymentRequest{
		EstimateID:        7,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "deadbeef",
	})
	if err == nil {
		t.Fatal("forged signature was accepted")
	}
	if len(recorder.payments) != 0 {
		t.Errorf("recorded %d payments, want 0", len(recorder.payments))
	}
}
