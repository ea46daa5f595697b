package models

import "time"

// EstimateStatus represents the lifecycle state of an estimate
type EstimateStatus string

const (
	EstimateStatusDraft           EstimateStatus = "DRAFT"
	EstimateStatusAwaitingPayment EstimateStatus = "AWAITING_PAYMENT"
	EstimateStatusCompleted       EstimateStatus = "COMPLETED"
)

// PartLine is a single part on an estimate
type PartLine struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// LaborLine is a single labor item on an estimate
type LaborLine struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	Hours       float64 `json:"hours"`
}

// Payment is a payment recorded against an estimate
type Payment struct {
	ID            int       `json:"id"`
	EstimateID    int       `json:"estimate_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"` // 'cash', 'card', 'online'
	ReceiptNumber string    `json:"receipt_number"`
	PaidAt        time.Time `json:"paid_at"`
}

// Estimate represents a single billable service record (parts + labor + payments)
type Estimate struct {
	ID            int            `json:"id"`
	Number        string         `json:"number"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	CustomerEmail string         `json:"customer_email"`
	VehicleMake   string         `json:"vehicle_make"`
	VehicleModel  string         `json:"vehicle_model"`
	VehiclePlate  string         `json:"vehicle_plate"`
	Status        EstimateStatus `json:"status"`
	Parts         []PartLine     `json:"parts"`
	Labor         []LaborLine    `json:"labor"`
	Payments      []Payment      `json:"payments"`
	// Discount percents are nullable: legacy rows created before discounts
	// existed have no value and must behave as 0.
	PartsDiscountPercent *float64  `json:"parts_discount_percent"`
	LaborDiscountPercent *float64  `json:"labor_discount_percent"`
	Notes                string    `json:"notes"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// EstimateTotals holds the derived monetary figures for one estimate.
// Always computed by billing.ComputeEstimateTotals, never persisted.
type EstimateTotals struct {
	PartsSubtotal       float64 `json:"parts_subtotal"`
	LaborSubtotal       float64 `json:"labor_subtotal"`
	PartsDiscountAmount float64 `json:"parts_discount_amount"`
	LaborDiscountAmount float64 `json:"labor_discount_amount"`
	Total               float64 `json:"total"`
	TotalPaid           float64 `json:"total_paid"`
	BalanceDue          float64 `json:"balance_due"`
}

// EstimateWithTotals is the API shape for a single estimate
type EstimateWithTotals struct {
	Estimate
	Totals EstimateTotals `json:"totals"`
}

// CreateEstimateRequest represents the request body for creating an estimate
type CreateEstimateRequest struct {
	CustomerName         string      `json:"customer_name"`
	CustomerPhone        string      `json:"customer_phone"`
	CustomerEmail        string      `json:"customer_email"`
	VehicleMake          string      `json:"vehicle_make"`
	VehicleModel         string      `json:"vehicle_model"`
	VehiclePlate         string      `json:"vehicle_plate"`
	Parts                []PartLine  `json:"parts"`
	Labor                []LaborLine `json:"labor"`
	PartsDiscountPercent *float64    `json:"parts_discount_percent"`
	LaborDiscountPercent *float64    `json:"labor_discount_percent"`
	Notes                string      `json:"notes"`
}

// UpdateEstimateRequest represents the request body for updating an estimate
type UpdateEstimateRequest struct {
	CustomerName         string      `json:"customer_name"`
	CustomerPhone        string      `json:"customer_phone"`
	CustomerEmail        string      `json:"customer_email"`
	VehicleMake          string      `json:"vehicle_make"`
	VehicleModel         string      `json:"vehicle_model"`
	VehiclePlate         string      `json:"vehicle_plate"`
	Parts                []PartLine  `json:"parts"`
	Labor                []LaborLine `json:"labor"`
	PartsDiscountPercent *float64    `json:"parts_discount_percent"`
	LaborDiscountPercent *float64    `json:"labor_discount_percent"`
	Notes                string      `json:"notes"`
}

// RecordPaymentRequest represents the request body for recording a payment
type RecordPaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Notes  string  `json:"notes"`
}

// EstimateFilter is used for filtering estimate lists
type EstimateFilter struct {
	Status EstimateStatus `json:"status"`
	Phone  string         `json:"phone"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// StatusBoardRow is the public display shape: no monetary figures,
// just what the waiting-room TV needs to show.
type StatusBoardRow struct {
	Number       string         `json:"number"`
	VehicleMake  string         `json:"vehicle_make"`
	VehicleModel string         `json:"vehicle_model"`
	VehiclePlate string         `json:"vehicle_plate"`
	Status       EstimateStatus `json:"status"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
