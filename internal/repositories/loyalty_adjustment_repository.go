package repositories

import (
	"context"
	"fmt"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoyaltyAdjustmentRepository persists the manual point-adjustment ledger as
// append-only rows. A customer's adjustment balance is always SUM(delta) over
// their rows; there is no code path that writes an absolute value, so a
// recomputation of transaction-derived points can never clobber a manual
// correction.
type LoyaltyAdjustmentRepository struct {
	DB *pgxpool.Pool
}

func NewLoyaltyAdjustmentRepository(db *pgxpool.Pool) *LoyaltyAdjustmentRepository {
	return &LoyaltyAdjustmentRepository{DB: db}
}

// Append records one signed delta for a customer
func (r *LoyaltyAdjustmentRepository) Append(ctx context.Context, phone string, delta int, reason string, userID int) (*models.PointAdjustment, error) {
	adj := &models.PointAdjustment{
		CustomerPhone:   phone,
		Delta:           delta,
		Reason:          reason,
		CreatedByUserID: userID,
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO loyalty_adjustments(customer_phone, delta, reason, created_by_user_id)
         VALUES($1, $2, $3, $4)
         RETURNING id, created_at`,
		phone, delta, reason, userID,
	).Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append adjustment: %w", err)
	}
	return adj, nil
}

// Get returns the summed adjustment balance for one customer (0 when absent)
func (r *LoyaltyAdjustmentRepository) Get(ctx context.Context, phone string) (int, error) {
	var total int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM loyalty_adjustments WHERE customer_phone=$1`,
		phone).Scan(&total)
	return total, err
}

// All returns the summed ledger for every customer with at least one row
func (r *LoyaltyAdjustmentRepository) All(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT customer_phone, COALESCE(SUM(delta), 0) as total
         FROM loyalty_adjustments GROUP BY customer_phone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := make(map[string]int)
	for rows.Next() {
		var phone string
		var total int
		if err := rows.Scan(&phone, &total); err != nil {
			return nil, err
		}
		ledger[phone] = total
	}
	return ledger, rows.Err()
}

// History returns the raw adjustment rows for a customer, newest first
func (r *LoyaltyAdjustmentRepository) History(ctx context.Context, phone string, limit int) ([]models.PointAdjustment, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, customer_phone, delta, COALESCE(reason, '') as reason, created_by_user_id, created_at
         FROM loyalty_adjustments
         WHERE customer_phone=$1
         ORDER BY created_at DESC, id DESC
         LIMIT $2`, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []models.PointAdjustment
	for rows.Next() {
		var a models.PointAdjustment
		if err := rows.Scan(&a.ID, &a.CustomerPhone, &a.Delta, &a.Reason, &a.CreatedByUserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}
