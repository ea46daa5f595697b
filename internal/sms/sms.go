package sms

import "log"

// Provider sends SMS messages. The portal only needs OTP delivery; the
// concrete gateway is swappable per deployment.
type Provider interface {
	SendOTP(phone, code string) error
}

// MockProvider prints codes to the log instead of sending. Used whenever no
// gateway API key is configured, so development logins still work.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) SendOTP(phone, code string) error {
	log.Printf("[MockSMS] OTP for %s: %s", phone, code)
	return nil
}
