package repositories

import (
	"context"
	"fmt"
	"strings"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EstimateRepository struct {
	DB *pgxpool.Pool
}

func NewEstimateRepository(db *pgxpool.Pool) *EstimateRepository {
	return &EstimateRepository{DB: db}
}

const estimateColumns = `
	id, number, customer_name, COALESCE(customer_phone, '') as customer_phone,
	COALESCE(customer_email, '') as customer_email,
	COALESCE(vehicle_make, '') as vehicle_make, COALESCE(vehicle_model, '') as vehicle_model,
	COALESCE(vehicle_plate, '') as vehicle_plate,
	status, parts_discount_percent, labor_discount_percent,
	COALESCE(notes, '') as notes, created_at, updated_at`

// Create inserts the estimate and its part/labor lines in one transaction
func (r *EstimateRepository) Create(ctx context.Context, est *models.Estimate) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO estimates(number, customer_name, customer_phone, customer_email,
			vehicle_make, vehicle_model, vehicle_plate, status,
			parts_discount_percent, labor_discount_percent, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		est.Number, est.CustomerName, est.CustomerPhone, est.CustomerEmail,
		est.VehicleMake, est.VehicleModel, est.VehiclePlate, est.Status,
		est.PartsDiscountPercent, est.LaborDiscountPercent, est.Notes,
	).Scan(&est.ID, &est.CreatedAt, &est.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create estimate: %w", err)
	}

	if err := r.replaceLines(ctx, tx, est); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites the estimate header and replaces all part/labor lines.
// Payments are never touched here; they only ever grow via AddPayment.
func (r *EstimateRepository) Update(ctx context.Context, est *models.Estimate) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE estimates SET customer_name=$1, customer_phone=$2, customer_email=$3,
			vehicle_make=$4, vehicle_model=$5, vehicle_plate=$6,
			parts_discount_percent=$7, labor_discount_percent=$8, notes=$9,
			updated_at=CURRENT_TIMESTAMP
         WHERE id=$10`,
		est.CustomerName, est.CustomerPhone, est.CustomerEmail,
		est.VehicleMake, est.VehicleModel, est.VehiclePlate,
		est.PartsDiscountPercent, est.LaborDiscountPercent, est.Notes, est.ID)
	if err != nil {
		return fmt.Errorf("failed to update estimate: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM estimate_parts WHERE estimate_id=$1`, est.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM estimate_labor WHERE estimate_id=$1`, est.ID); err != nil {
		return err
	}
	if err := r.replaceLines(ctx, tx, est); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *EstimateRepository) replaceLines(ctx context.Context, tx pgx.Tx, est *models.Estimate) error {
	for i := range est.Parts {
		p := &est.Parts[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO estimate_parts(estimate_id, name, price, quantity, position)
             VALUES($1, $2, $3, $4, $5) RETURNING id`,
			est.ID, p.Name, p.Price, p.Quantity, i,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert part line: %w", err)
		}
	}
	for i := range est.Labor {
		l := &est.Labor[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO estimate_labor(estimate_id, description, rate, hours, position)
             VALUES($1, $2, $3, $4, $5) RETURNING id`,
			est.ID, l.Description, l.Rate, l.Hours, i,
		).Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("failed to insert labor line: %w", err)
		}
	}
	return nil
}

func (r *EstimateRepository) Get(ctx context.Context, id int) (*models.Estimate, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+estimateColumns+` FROM estimates WHERE id=$1`, id)

	est, err := scanEstimate(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, est); err != nil {
		return nil, err
	}
	return est, nil
}

func (r *EstimateRepository) GetByNumber(ctx context.Context, number string) (*models.Estimate, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+estimateColumns+` FROM estimates WHERE number=$1`, number)

	est, err := scanEstimate(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, est); err != nil {
		return nil, err
	}
	return est, nil
}

// List returns estimates matching the filter, each with its lines loaded.
// The line tables are fetched in bulk (one query per table) rather than per
// estimate, since the loyalty engine reads the full set on every call.
func (r *EstimateRepository) List(ctx context.Context, filter *models.EstimateFilter) ([]*models.Estimate, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter != nil && filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}
	if filter != nil && filter.Phone != "" {
		conditions = append(conditions, fmt.Sprintf("customer_phone = $%d", argNum))
		args = append(args, filter.Phone)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM estimates %s ORDER BY created_at ASC, id ASC`,
		estimateColumns, whereClause)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []*models.Estimate
	byID := make(map[int]*models.Estimate)
	for rows.Next() {
		est, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, est)
		byID[est.ID] = est
	}
	if len(estimates) == 0 {
		return estimates, nil
	}

	if err := r.loadAllParts(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadAllLabor(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadAllPayments(ctx, byID); err != nil {
		return nil, err
	}
	return estimates, nil
}

func (r *EstimateRepository) SetStatus(ctx context.Context, id int, status models.EstimateStatus) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE estimates SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *EstimateRepository) AddPayment(ctx context.Context, p *models.Payment) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO estimate_payments(estimate_id, amount, method, receipt_number)
         VALUES($1, $2, $3, $4)
         RETURNING id, paid_at`,
		p.EstimateID, p.Amount, p.Method, p.ReceiptNumber,
	).Scan(&p.ID, &p.PaidAt)
}

func (r *EstimateRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM estimates WHERE id=$1`, id)
	return err
}

// scanEstimate scans the header columns from one row
func scanEstimate(row pgx.Row) (*models.Estimate, error) {
	var est models.Estimate
	err := row.Scan(
		&est.ID, &est.Number, &est.CustomerName, &est.CustomerPhone, &est.CustomerEmail,
		&est.VehicleMake, &est.VehicleModel, &est.VehiclePlate,
		&est.Status, &est.PartsDiscountPercent, &est.LaborDiscountPercent,
		&est.Notes, &est.CreatedAt, &est.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &est, nil
}

func (r *EstimateRepository) loadLines(ctx context.Context, est *models.Estimate) error {
	byID := map[int]*models.Estimate{est.ID: est}
	if err := r.loadAllParts(ctx, byID); err != nil {
		return err
	}
	if err := r.loadAllLabor(ctx, byID); err != nil {
		return err
	}
	return r.loadAllPayments(ctx, byID)
}

func (r *EstimateRepository) loadAllParts(ctx context.Context, byID map[int]*models.Estimate) error {
	ids := estimateIDs(byID)
	rows, err := r.DB.Query(ctx,
		`SELECT id, estimate_id, name, price, quantity
         FROM estimate_parts WHERE estimate_id = ANY($1)
         ORDER BY estimate_id, position, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PartLine
		var estID int
		if err := rows.Scan(&p.ID, &estID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return err
		}
		if est, ok := byID[estID]; ok {
			est.Parts = append(est.Parts, p)
		}
	}
	return rows.Err()
}

func (r *EstimateRepository) loadAllLabor(ctx context.Context, byID map[int]*models.Estimate) error {
	ids := estimateIDs(byID)
	rows, err := r.DB.Query(ctx,
		`SELECT id, estimate_id, description, rate, hours
         FROM estimate_labor WHERE estimate_id = ANY($1)
         ORDER BY estimate_id, position, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.LaborLine
		var estID int
		if err := rows.Scan(&l.ID, &estID, &l.Description, &l.Rate, &l.Hours); err != nil {
			return err
		}
		if est, ok := byID[estID]; ok {
			est.Labor = append(est.Labor, l)
		}
	}
	return rows.Err()
}

func (r *EstimateRepository) loadAllPayments(ctx context.Context, byID map[int]*models.Estimate) error {
	ids := estimateIDs(byID)
	rows, err := r.DB.Query(ctx,
		`SELECT id, estimate_id, amount, COALESCE(method, 'cash') as method,
			COALESCE(receipt_number, '') as receipt_number, paid_at
         FROM estimate_payments WHERE estimate_id = ANY($1)
         ORDER BY estimate_id, paid_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.EstimateID, &p.Amount, &p.Method, &p.ReceiptNumber, &p.PaidAt); err != nil {
			return err
		}
		if est, ok := byID[p.EstimateID]; ok {
			est.Payments = append(est.Payments, p)
		}
	}
	return rows.Err()
}

func estimateIDs(byID map[int]*models.Estimate) []int {
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	return ids
}
