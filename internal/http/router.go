package http

import (
	"net/http"

	"garage-backend/internal/handlers"
	"garage-backend/internal/middleware"
	"garage-backend/internal/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the employee dashboard API plus the public status
// surfaces. Money-bearing routes all sit behind employee auth; the public
// routes expose status only.
func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	estimateHandler *handlers.EstimateHandler,
	loyaltyHandler *handlers.LoyaltyHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	totpHandler *handlers.TOTPHandler,
	reportHandler *handlers.ReportHandler,
	publicHandler *handlers.PublicHandler,
	healthHandler *handlers.HealthHandler,
	statusHub *ws.StatusHub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	meAPI := r.PathPrefix("/auth/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Estimates
	estimatesAPI := r.PathPrefix("/api/estimates").Subrouter()
	estimatesAPI.Use(authMiddleware.Authenticate)
	estimatesAPI.HandleFunc("", estimateHandler.ListEstimates).Methods("GET")
	estimatesAPI.HandleFunc("", estimateHandler.CreateEstimate).Methods("POST")
	estimatesAPI.HandleFunc("/{id}", estimateHandler.GetEstimate).Methods("GET")
	estimatesAPI.HandleFunc("/{id}", estimateHandler.UpdateEstimate).Methods("PUT")
	estimatesAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(estimateHandler.DeleteEstimate)).ServeHTTP).Methods("DELETE")
	estimatesAPI.HandleFunc("/{id}/status", estimateHandler.SetStatus).Methods("PATCH")
	estimatesAPI.HandleFunc("/{id}/payments", authMiddleware.RequireRole("admin", "accountant")(http.HandlerFunc(estimateHandler.RecordPayment)).ServeHTTP).Methods("POST")
	estimatesAPI.HandleFunc("/{id}/pdf", reportHandler.EstimatePDF).Methods("GET")

	// Protected API routes - Loyalty
	loyaltyAPI := r.PathPrefix("/api/loyalty").Subrouter()
	loyaltyAPI.Use(authMiddleware.Authenticate)
	loyaltyAPI.HandleFunc("/clients", loyaltyHandler.ListClients).Methods("GET")
	loyaltyAPI.HandleFunc("/clients/{phone}", loyaltyHandler.GetClient).Methods("GET")
	loyaltyAPI.HandleFunc("/adjustments", authMiddleware.RequireAdmin(http.HandlerFunc(loyaltyHandler.AdjustPoints)).ServeHTTP).Methods("POST")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/search", customerHandler.SearchByPhone).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(customerHandler.DeleteCustomer)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	usersAPI.HandleFunc("/{id}", userHandler.DeleteUser).Methods("DELETE")

	// Protected API routes - System Settings (admin only)
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.RequireAdmin)
	settingsAPI.HandleFunc("", systemSettingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/loyalty-config", systemSettingHandler.GetLoyaltyConfig).Methods("GET")
	settingsAPI.HandleFunc("/loyalty-config", systemSettingHandler.UpdateLoyaltyConfig).Methods("PUT")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.UpdateSetting).Methods("PUT")

	// Protected API routes - Two-factor
	totpAPI := r.PathPrefix("/api/totp").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	totpAPI.HandleFunc("/verify", totpHandler.VerifySetup).Methods("POST")
	totpAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")

	// Protected API routes - Sign-in audit (admin only)
	auditAPI := r.PathPrefix("/api/audit").Subrouter()
	auditAPI.Use(authMiddleware.RequireAdmin)
	auditAPI.HandleFunc("/logins", authHandler.ListLoginLogs).Methods("GET")

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.RequireRole("admin", "accountant"))
	reportsAPI.HandleFunc("/loyalty.csv", reportHandler.LoyaltyCSV).Methods("GET")
	reportsAPI.HandleFunc("/revenue.csv", reportHandler.RevenueCSV).Methods("GET")

	// Public status surfaces (no auth; no money beyond balance due on lookup)
	r.HandleFunc("/public/status", publicHandler.StatusBoard).Methods("GET")
	r.HandleFunc("/public/status/{number}", publicHandler.Status).Methods("GET")
	r.HandleFunc("/ws/status", statusHub.HandleConnection)

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewCustomerRouter builds the customer portal API, served on its own port.
// Identity is a phone number proven by OTP; there is no employee surface here.
func NewCustomerRouter(
	portalHandler *handlers.CustomerPortalHandler,
	razorpayHandler *handlers.RazorpayHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API - OTP authentication
	r.HandleFunc("/auth/request-otp", portalHandler.RequestOTP).Methods("POST")
	r.HandleFunc("/auth/verify-otp", portalHandler.VerifyOTP).Methods("POST")

	// Payment provider webhook (signature-verified, not session-authenticated)
	r.HandleFunc("/webhooks/razorpay", razorpayHandler.Webhook).Methods("POST")

	// Protected API routes - Customer portal (requires customer JWT)
	portalAPI := r.PathPrefix("/api").Subrouter()
	portalAPI.Use(authMiddleware.AuthenticateCustomer)
	portalAPI.HandleFunc("/summary", portalHandler.Summary).Methods("GET")
	portalAPI.HandleFunc("/estimates/{id}", portalHandler.GetEstimate).Methods("GET")
	portalAPI.HandleFunc("/payments/order", razorpayHandler.CreateOrder).Methods("POST")
	portalAPI.HandleFunc("/payments/verify", razorpayHandler.VerifyPayment).Methods("POST")

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
