package services

import (
	"context"
	"errors"

	"garage-backend/internal/repositories"

	"github.com/pquerna/otp/totp"
)

// TOTPService handles two-factor enrollment and verification for admin users
type TOTPService struct {
	Users *repositories.UserRepository
	Repo  *repositories.TOTPRepository
}

func NewTOTPService(users *repositories.UserRepository, repo *repositories.TOTPRepository) *TOTPService {
	return &TOTPService{Users: users, Repo: repo}
}

// EnrollmentResponse carries what the authenticator app needs
type EnrollmentResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// BeginEnrollment generates a new secret for the user. The secret stays
// unconfirmed (and login unaffected) until VerifySetup succeeds.
func (s *TOTPService) BeginEnrollment(ctx context.Context, userID int) (*EnrollmentResponse, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "garage-backend",
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SaveSecret(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}
	return &EnrollmentResponse{Secret: key.Secret(), URL: key.URL()}, nil
}

// VerifySetup confirms enrollment with a first valid code
func (s *TOTPService) VerifySetup(ctx context.Context, userID int, code string) error {
	secret, _, err := s.Repo.GetSecret(ctx, userID)
	if err != nil {
		return errors.New("no pending enrollment")
	}
	if !totp.Validate(code, secret) {
		return errors.New("invalid code")
	}
	if err := s.Repo.Confirm(ctx, userID); err != nil {
		return err
	}
	return s.Users.SetTOTPEnabled(ctx, userID, true)
}

// Verify checks a login code against the user's confirmed secret
func (s *TOTPService) Verify(ctx context.Context, userID int, code string) bool {
	secret, confirmed, err := s.Repo.GetSecret(ctx, userID)
	if err != nil || !confirmed {
		return false
	}
	return totp.Validate(code, secret)
}

// Disable removes enrollment and clears the user flag
func (s *TOTPService) Disable(ctx context.Context, userID int) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return err
	}
	return s.Users.SetTOTPEnabled(ctx, userID, false)
}
