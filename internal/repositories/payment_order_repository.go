package repositories

import (
	"context"
	"fmt"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentOrderRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentOrderRepository(db *pgxpool.Pool) *PaymentOrderRepository {
	return &PaymentOrderRepository{DB: db}
}

// Create stores a pending order at checkout time
func (r *PaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (razorpay_order_id, estimate_id, customer_phone, amount_paise)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		order.RazorpayOrderID, order.EstimateID, order.CustomerPhone, order.AmountPaise,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store payment order: %w", err)
	}
	return nil
}

func (r *PaymentOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	query := `
		SELECT id, razorpay_order_id, estimate_id, customer_phone, amount_paise,
		       consumed, created_at, consumed_at
		FROM payment_orders
		WHERE razorpay_order_id = $1
	`
	var o models.PaymentOrder
	err := r.DB.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.RazorpayOrderID, &o.EstimateID, &o.CustomerPhone,
		&o.AmountPaise, &o.Consumed, &o.CreatedAt, &o.ConsumedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment order: %w", err)
	}
	return &o, nil
}

// MarkConsumed flips an order to consumed. The WHERE clause makes the flip
// atomic: a second verification of the same order id matches zero rows.
func (r *PaymentOrderRepository) MarkConsumed(ctx context.Context, orderID string) error {
	query := `
		UPDATE payment_orders
		SET consumed = TRUE, consumed_at = NOW()
		WHERE razorpay_order_id = $1 AND consumed = FALSE
	`
	tag, err := r.DB.Exec(ctx, query, orderID)
	if err != nil {
		return fmt.Errorf("failed to consume payment order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment order already processed")
	}
	return nil
}
