package models

import "time"

// PaymentOrder is a pending online payment created at checkout time. The
// amount is fixed here, when the order is created against the balance due;
// verification later credits this stored amount, never a client-supplied one.
// An order is consumed exactly once.
type PaymentOrder struct {
	ID              int        `json:"id"`
	RazorpayOrderID string     `json:"razorpay_order_id"`
	EstimateID      int        `json:"estimate_id"`
	CustomerPhone   string     `json:"customer_phone"`
	AmountPaise     int        `json:"amount_paise"`
	Consumed        bool       `json:"consumed"`
	CreatedAt       time.Time  `json:"created_at"`
	ConsumedAt      *time.Time `json:"consumed_at,omitempty"`
}
