package repositories

import (
	"context"
	"time"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository struct {
	DB *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{DB: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.CustomerOTP) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customer_otps(phone, otp_code, expires_at)
         VALUES($1, $2, $3)
         RETURNING id, created_at`,
		otp.Phone, otp.OTPCode, otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt)
}

// GetLatestByPhone retrieves the most recent OTP for a phone number
func (r *OTPRepository) GetLatestByPhone(ctx context.Context, phone string) (*models.CustomerOTP, error) {
	var otp models.CustomerOTP
	err := r.DB.QueryRow(ctx,
		`SELECT id, phone, otp_code, created_at, expires_at, verified, attempts
         FROM customer_otps
         WHERE phone = $1
         ORDER BY created_at DESC
         LIMIT 1`, phone).Scan(
		&otp.ID, &otp.Phone, &otp.OTPCode, &otp.CreatedAt,
		&otp.ExpiresAt, &otp.Verified, &otp.Attempts)
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// IncrementAttempts increments the verification attempt counter
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE customer_otps SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

// MarkVerified marks an OTP as successfully verified
func (r *OTPRepository) MarkVerified(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE customer_otps SET verified = TRUE WHERE id = $1`, id)
	return err
}

// CountRecentRequests counts OTP requests for a phone within the window
func (r *OTPRepository) CountRecentRequests(ctx context.Context, phone string, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_otps WHERE phone = $1 AND created_at > $2`,
		phone, time.Now().Add(-window)).Scan(&count)
	return count, err
}
