package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TOTPRepository stores per-user TOTP secrets for admin 2FA
type TOTPRepository struct {
	DB *pgxpool.Pool
}

func NewTOTPRepository(db *pgxpool.Pool) *TOTPRepository {
	return &TOTPRepository{DB: db}
}

// SaveSecret stores (or replaces) the pending secret for a user
func (r *TOTPRepository) SaveSecret(ctx context.Context, userID int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO totp_secrets(user_id, secret)
         VALUES($1, $2)
         ON CONFLICT (user_id)
         DO UPDATE SET secret = $2, confirmed = FALSE, updated_at = CURRENT_TIMESTAMP`,
		userID, secret)
	return err
}

// GetSecret returns the stored secret and whether setup has been confirmed
func (r *TOTPRepository) GetSecret(ctx context.Context, userID int) (secret string, confirmed bool, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT secret, confirmed FROM totp_secrets WHERE user_id=$1`,
		userID).Scan(&secret, &confirmed)
	return secret, confirmed, err
}

// Confirm marks the user's TOTP setup as verified
func (r *TOTPRepository) Confirm(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE totp_secrets SET confirmed = TRUE, updated_at = CURRENT_TIMESTAMP WHERE user_id=$1`,
		userID)
	return err
}

// Delete removes a user's TOTP enrollment
func (r *TOTPRepository) Delete(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM totp_secrets WHERE user_id=$1`, userID)
	return err
}
