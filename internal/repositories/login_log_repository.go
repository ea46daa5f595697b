package repositories

import (
	"context"
	"fmt"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

// Record stores one sign-in attempt. userID is zero for failed attempts.
func (r *LoginLogRepository) Record(ctx context.Context, userID int, email string, success bool, ipAddress, userAgent string) error {
	query := `
		INSERT INTO login_logs (user_id, email, success, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.Exec(ctx, query, userID, email, success, ipAddress, userAgent)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// List returns the most recent attempts, newest first, with the user's
// current name joined in where the account still exists.
func (r *LoginLogRepository) List(ctx context.Context, limit int) ([]models.LoginLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT ll.id, ll.user_id, COALESCE(u.name, ''), ll.email, ll.success,
		       COALESCE(ll.ip_address, ''), COALESCE(ll.user_agent, ''), ll.created_at
		FROM login_logs ll
		LEFT JOIN users u ON u.id = ll.user_id
		ORDER BY ll.created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.LoginLog, 0)
	for rows.Next() {
		var l models.LoginLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.Email, &l.Success, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan login log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
