package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "nfccard-backend/internal/api/http"
	"nfccard-backend/internal/config"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/payment"
	"nfccard-backend/internal/pricing"
	"nfccard-backend/internal/queue"
	"nfccard-backend/internal/repository/postgres"
	"nfccard-backend/internal/security"
	"nfccard-backend/internal/service"
	"nfccard-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NFC Card Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format, "environment", cfg.Server.Environment)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "from", cfg.Email.From)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Storage Service
	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type, "upload_dir", cfg.Storage.UploadDir)

	// Initialize Email
	mailer, err := service.NewMailer(ctx, cfg.Email)
	if err != nil {
		logger.Error("Failed to initialize mailer", "error", err)
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	emailService := service.NewEmailService(mailer, cfg.Email.From, cfg.Email.FromName, cfg.Email.AdminRecipient)

	// Optional notification retry queue
	var retryQueue queue.RetryQueue
	if cfg.Redis.Enabled() {
		rq := queue.NewRedisQueue(queue.NewRedisClient(cfg.Redis), cfg.Redis.RetryQueueKey)
		if err := rq.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, notification retries disabled", "address", cfg.Redis.Address, "error", err)
		} else {
			retryQueue = rq
			defer rq.Close()
			logger.Info("Notification retry queue enabled", "address", cfg.Redis.Address, "key", cfg.Redis.RetryQueueKey)
		}
	}

	// Pricing
	plans := cfg.Pricing.Plans
	if len(plans) == 0 {
		plans = pricing.DefaultPlans()
	}
	resolver, err := pricing.NewResolver(plans, cfg.Pricing.DefaultPlan)
	if err != nil {
		log.Fatalf("Invalid pricing configuration: %v", err)
	}

	// Initialize Services
	gateway := payment.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	notificationService := service.NewNotificationService(emailService, retryQueue, cfg.EmailTimeout())
	applicationService := service.NewApplicationService(store, resolver, files, notificationService, cfg.Upload.MaxFileSizeBytes())
	orderService := service.NewOrderService(store, gateway, cfg.Gateway.Currency)
	paymentService := service.NewPaymentService(store, gateway, cfg.Gateway.KeySecret)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	authService := service.NewAuthService(cfg.Admin.Email, cfg.Admin.PasswordHash, tokenManager)

	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
		log.Fatalf("Invalid rate limit configuration: %v", err)
	}
	limiter.StartCleanup(ctx, 5*time.Minute)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Applications:   applicationService,
		Orders:         orderService,
		Payments:       paymentService,
		Notifications:  notificationService,
		Auth:           authService,
		Tokens:         tokenManager,
		Files:          files,
		DB:             store,
		ServeUploads:   cfg.Storage.Type == "" || cfg.Storage.Type == "local",
		MaxUploadBytes: cfg.Upload.MaxFileSizeBytes(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        limiter,
		Development:    cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Let in-flight submission emails finish before the process exits.
	notificationService.Wait()
	logger.Info("Server stopped. Goodbye!")
}
