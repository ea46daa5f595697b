package models

import "time"

// CustomerOTP is a one-time code sent to a customer's phone for portal login
type CustomerOTP struct {
	ID        int       `json:"id"`
	Phone     string    `json:"phone"`
	OTPCode   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
}

type RequestOTPRequest struct {
	Phone string `json:"phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}
