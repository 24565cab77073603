package jobs

import (
	"fmt"

	"nfccard-backend/internal/config"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/queue"
	"nfccard-backend/internal/repository"
	"nfccard-backend/internal/service"
)

const (
	JobReconcileOrders    = "reconcile-orders"
	JobRetryNotifications = "retry-notifications"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	apps     repository.ApplicationRepository
	services *Services
	retry    queue.RetryQueue // nil when Redis is not configured
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Payment      service.PaymentService
	Notification service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(apps repository.ApplicationRepository, services *Services, retry queue.RetryQueue, cfg *config.Config) *JobRunner {
	return &JobRunner{
		apps:     apps,
		services: services,
		retry:    retry,
		config:   cfg,
	}
}

// Config exposes the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and records the outcome
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	log := logger.WithComponent("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		metrics.JobRun(jobName, err == nil)
	}()

	log.Info("Starting job")
	if err = jobFunc(); err != nil {
		log.Error("Job failed", "error", err)
		return err
	}
	log.Info("Job completed")
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReconcileOrders()
	jr.RetryNotifications()
}

// Run executes a job by name; it reports false for an unknown name.
func (jr *JobRunner) Run(name string) bool {
	switch name {
	case JobReconcileOrders:
		jr.ReconcileOrders()
	case JobRetryNotifications:
		jr.RetryNotifications()
	case "all":
		jr.RunAll()
	default:
		return false
	}
	return true
}
