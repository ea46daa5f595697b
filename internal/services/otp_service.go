package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"garage-backend/internal/models"
	"garage-backend/internal/repositories"
	"garage-backend/internal/sms"
)

const (
	otpLength        = 6
	otpTTL           = 5 * time.Minute
	otpMaxAttempts   = 5
	otpRequestWindow = time.Hour
	otpRequestLimit  = 5
)

var (
	ErrOTPRateLimited = errors.New("too many OTP requests, try again later")
	ErrOTPInvalid     = errors.New("invalid or expired code")
)

// OTPService issues and verifies portal login codes
type OTPService struct {
	Repo      *repositories.OTPRepository
	Customers *repositories.CustomerRepository
	SMS       sms.Provider
}

func NewOTPService(repo *repositories.OTPRepository, customers *repositories.CustomerRepository, provider sms.Provider) *OTPService {
	return &OTPService{Repo: repo, Customers: customers, SMS: provider}
}

// RequestOTP generates and sends a code to a known customer phone
func (s *OTPService) RequestOTP(ctx context.Context, phone string) error {
	if _, err := s.Customers.GetByPhone(ctx, phone); err != nil {
		// Same error as rate limiting would be a phone-enumeration hole the
		// other way; a plain not-found keeps the portal usable.
		return errors.New("no customer with this phone")
	}

	recent, err := s.Repo.CountRecentRequests(ctx, phone, otpRequestWindow)
	if err != nil {
		return err
	}
	if recent >= otpRequestLimit {
		return ErrOTPRateLimited
	}

	code, err := randomCode(otpLength)
	if err != nil {
		return err
	}

	otp := &models.CustomerOTP{
		Phone:     phone,
		OTPCode:   code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.Repo.Create(ctx, otp); err != nil {
		return err
	}
	return s.SMS.SendOTP(phone, code)
}

// VerifyOTP checks the latest code for the phone
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code string) error {
	otp, err := s.Repo.GetLatestByPhone(ctx, phone)
	if err != nil {
		return ErrOTPInvalid
	}
	if otp.Verified || time.Now().After(otp.ExpiresAt) || otp.Attempts >= otpMaxAttempts {
		return ErrOTPInvalid
	}
	if otp.OTPCode != code {
		if err := s.Repo.IncrementAttempts(ctx, otp.ID); err != nil {
			return err
		}
		return ErrOTPInvalid
	}
	return s.Repo.MarkVerified(ctx, otp.ID)
}

func randomCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code, nil
}
