package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"garage-backend/internal/auth"
	"garage-backend/internal/cache"
	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/db"
	"garage-backend/internal/handlers"
	"garage-backend/internal/health"
	garagehttp "garage-backend/internal/http"
	"garage-backend/internal/middleware"
	"garage-backend/internal/models"
	"garage-backend/internal/monitoring"
	"garage-backend/internal/repositories"
	"garage-backend/internal/services"
	"garage-backend/internal/sms"
	"garage-backend/internal/storage"
	"garage-backend/internal/ws"
	"garage-backend/migrations"
)

func main() {
	mode := flag.String("mode", "employee", "Server mode: employee or customer")
	portOverride := flag.Int("port", 0, "Override the configured port")
	flag.Parse()

	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable, serving from Postgres only: %v", err)
	} else {
		log.Println("[Redis] Cache connected")
	}

	migrationCtx, cancelMigration := context.WithTimeout(context.Background(), 30*time.Second)
	migrator := database.NewMigrator(pool, migrations.Files)
	if err := migrator.RunMigrations(migrationCtx); err != nil {
		cancelMigration()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancelMigration()

	healthChecker := health.NewHealthChecker(pool)

	if cfg.Monitoring.Enabled {
		monitoringServer := monitoring.NewMonitoringServer(pool, cfg.Monitoring.Port)
		go monitoringServer.Start()
	}

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	estimateRepo := repositories.NewEstimateRepository(pool)
	adjustmentRepo := repositories.NewLoyaltyAdjustmentRepository(pool)
	settingRepo := repositories.NewSettingRepository(pool)
	otpRepo := repositories.NewOTPRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Services shared by both modes
	estimateService := services.NewEstimateService(estimateRepo)
	settingService := services.NewSystemSettingService(settingRepo)
	loyaltyService := services.NewLoyaltyService(estimateRepo, adjustmentRepo, settingService)

	var router http.Handler
	port := cfg.Server.Port

	switch *mode {
	case "customer":
		port = cfg.Server.PortalPort

		otpService := services.NewOTPService(otpRepo, customerRepo, sms.NewMockProvider())
		portalService := services.NewCustomerPortalService(estimateService, loyaltyService)
		paymentOrderRepo := repositories.NewPaymentOrderRepository(pool)
		razorpayService := services.NewRazorpayService(
			cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret,
			estimateService, paymentOrderRepo,
		)

		portalHandler := handlers.NewCustomerPortalHandler(otpService, portalService, jwtManager)
		razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
		healthHandler := handlers.NewHealthHandler(healthChecker)

		router = garagehttp.NewCustomerRouter(portalHandler, razorpayHandler, healthHandler, authMiddleware)

	case "employee":
		statusHub := ws.NewStatusHub(func() []models.StatusBoardRow {
			rows, err := estimateService.StatusBoard(context.Background())
			if err != nil {
				log.Printf("[WS] Status board snapshot failed: %v", err)
				return nil
			}
			return rows
		})
		estimateService.SetNotifier(statusHub)

		userService := services.NewUserService(userRepo, jwtManager)
		customerService := services.NewCustomerService(customerRepo)
		totpService := services.NewTOTPService(userRepo, totpRepo)
		reportService := services.NewReportService(estimateService, loyaltyService)
		if archiver := storage.NewArchiverFromEnv(); archiver != nil {
			reportService.SetArchiver(archiver)
			log.Println("[Reports] Archive uploads enabled")
		}

		authHandler := handlers.NewAuthHandler(userService, totpService, loginLogRepo)
		userHandler := handlers.NewUserHandler(userService)
		customerHandler := handlers.NewCustomerHandler(customerService)
		estimateHandler := handlers.NewEstimateHandler(estimateService)
		loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService)
		systemSettingHandler := handlers.NewSystemSettingHandler(settingService)
		totpHandler := handlers.NewTOTPHandler(totpService)
		reportHandler := handlers.NewReportHandler(reportService)
		publicHandler := handlers.NewPublicHandler(estimateService)
		healthHandler := handlers.NewHealthHandler(healthChecker)

		router = garagehttp.NewRouter(
			authHandler,
			userHandler,
			customerHandler,
			estimateHandler,
			loyaltyHandler,
			systemSettingHandler,
			totpHandler,
			reportHandler,
			publicHandler,
			healthHandler,
			statusHub,
			authMiddleware,
		)

	default:
		log.Fatalf("Unknown mode %q (want employee or customer)", *mode)
	}

	if *portOverride != 0 {
		port = *portOverride
	}

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.RequestLogging(
				corsMiddleware(router),
			),
		),
	)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Server running on %s (mode: %s)", addr, *mode)
	log.Fatal(http.ListenAndServe(addr, handler))
}
