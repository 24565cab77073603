package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nfccard-backend/internal/config"
	"nfccard-backend/internal/jobs"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/payment"
	"nfccard-backend/internal/queue"
	"nfccard-backend/internal/repository/postgres"
	"nfccard-backend/internal/scheduler"
	"nfccard-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-orders', 'retry-notifications', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NFC Card Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	mailer, err := service.NewMailer(ctx, cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	emailService := service.NewEmailService(mailer, cfg.Email.From, cfg.Email.FromName, cfg.Email.AdminRecipient)

	var retryQueue queue.RetryQueue
	if cfg.Redis.Enabled() {
		rq := queue.NewRedisQueue(queue.NewRedisClient(cfg.Redis), cfg.Redis.RetryQueueKey)
		if err := rq.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, notification retries skipped", "address", cfg.Redis.Address, "error", err)
		} else {
			retryQueue = rq
			defer rq.Close()
		}
	}

	gateway := payment.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)

	jobServices := &jobs.Services{
		Payment:      service.NewPaymentService(store, gateway, cfg.Gateway.KeySecret),
		Notification: service.NewNotificationService(emailService, retryQueue, cfg.EmailTimeout()),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, jobServices, retryQueue, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !jobRunner.Run(*runOnce) {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Printf("Available jobs:\n")
			fmt.Printf("  - %s\n", jobs.JobReconcileOrders)
			fmt.Printf("  - %s\n", jobs.JobRetryNotifications)
			fmt.Printf("  - all\n")
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
