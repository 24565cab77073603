package jobs

import (
	"context"
	"time"

	"nfccard-backend/internal/logger"
)

// ReconcileOrders records captured payments for orders whose browser
// callback never arrived.
func (jr *JobRunner) ReconcileOrders() {
	_ = jr.runWithRecovery(JobReconcileOrders, func() error {
		cfg := jr.config.Scheduler
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cutoff := time.Now().UTC().Add(-cfg.ReconcileAfter())
		recorded, err := jr.services.Payment.ReconcileAwaiting(ctx, cutoff, cfg.BatchSize)
		if err != nil {
			return err
		}
		logger.Info("Order reconciliation finished", "recorded", recorded, "cutoff", cutoff)
		return nil
	})
}
