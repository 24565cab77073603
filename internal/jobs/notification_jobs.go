package jobs

import (
	"context"
	"errors"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
)

// RetryNotifications re-sends emails that failed at submission time.
// Jobs that keep failing are re-queued until the attempt limit.
func (jr *JobRunner) RetryNotifications() {
	_ = jr.runWithRecovery(JobRetryNotifications, func() error {
		if jr.retry == nil {
			logger.Debug("Notification retry queue not configured, skipping")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		// Bound the run to what is queued now so re-queued jobs wait for the next tick.
		pending, err := jr.retry.Len(ctx)
		if err != nil {
			return err
		}
		batch := int64(jr.config.Scheduler.BatchSize)
		if batch > 0 && pending > batch {
			pending = batch
		}

		var sent, requeued, dropped int
		for i := int64(0); i < pending; i++ {
			job, err := jr.retry.Pop(ctx)
			if err != nil {
				return err
			}
			if job == nil {
				break
			}

			app, err := jr.apps.GetByID(ctx, job.ApplicationID)
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Dropping notification for deleted application", "applicationID", job.ApplicationID, "channel", job.Channel)
				dropped++
				continue
			}
			if err == nil {
				err = jr.services.Notification.Deliver(ctx, app, job.Channel)
			}
			if err == nil {
				sent++
				continue
			}

			job.Attempts++
			job.LastError = err.Error()
			if job.Attempts >= jr.config.Redis.MaxAttempts {
				logger.Error("Giving up on notification", "applicationID", job.ApplicationID,
					"channel", job.Channel, "attempts", job.Attempts, "error", err)
				dropped++
				continue
			}
			if pushErr := jr.retry.Push(ctx, *job); pushErr != nil {
				return pushErr
			}
			requeued++
		}

		logger.Info("Notification retries finished", "sent", sent, "requeued", requeued, "dropped", dropped)
		return nil
	})
}
