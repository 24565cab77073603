package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/queue"
)

type notificationService struct {
	email    EmailService
	retry    queue.RetryQueue // nil disables retries
	timeout  time.Duration
	inFlight sync.WaitGroup
}

func NewNotificationService(email EmailService, retry queue.RetryQueue, timeout time.Duration) NotificationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &notificationService{email: email, retry: retry, timeout: timeout}
}

func (s *notificationService) NotifySubmission(app *domain.Application) {
	snapshot := *app
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()

		// Detached from the request: the response has already been written.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		adminErr, applicantErr := s.dispatch(ctx, &snapshot)
		s.scheduleRetry(ctx, &snapshot, queue.ChannelAdmin, adminErr)
		s.scheduleRetry(ctx, &snapshot, queue.ChannelApplicant, applicantErr)
	}()
}

func (s *notificationService) NotifyResend(ctx context.Context, app *domain.Application) ResendResult {
	adminErr, applicantErr := s.dispatch(ctx, app)
	return ResendResult{AdminOK: adminErr == nil, ApplicantOK: applicantErr == nil}
}

// Deliver sends a single channel's email; used by the retry job.
func (s *notificationService) Deliver(ctx context.Context, app *domain.Application, channel queue.Channel) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic sending %s email: %v", channel, r)
		}
		metrics.NotificationSent(string(channel), err == nil)
		if err != nil {
			logger.Error("Notification failed", "applicationID", app.ID, "channel", channel, "error", err)
		}
	}()

	switch channel {
	case queue.ChannelAdmin:
		return s.email.SendApplicationEmail(ctx, app)
	case queue.ChannelApplicant:
		return s.email.SendConfirmationEmail(ctx, app)
	default:
		return fmt.Errorf("unknown notification channel %q", channel)
	}
}

func (s *notificationService) TestTransport(ctx context.Context) error {
	return s.email.VerifyTransport(ctx)
}

func (s *notificationService) Wait() {
	s.inFlight.Wait()
}

// dispatch runs both channels concurrently and waits for both outcomes.
func (s *notificationService) dispatch(ctx context.Context, app *domain.Application) (adminErr, applicantErr error) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		adminErr = s.Deliver(ctx, app, queue.ChannelAdmin)
	}()
	go func() {
		defer wg.Done()
		applicantErr = s.Deliver(ctx, app, queue.ChannelApplicant)
	}()
	wg.Wait()
	return adminErr, applicantErr
}

func (s *notificationService) scheduleRetry(ctx context.Context, app *domain.Application, channel queue.Channel, sendErr error) {
	if sendErr == nil || s.retry == nil {
		return
	}
	job := queue.NotificationJob{
		ApplicationID: app.ID,
		Channel:       channel,
		Attempts:      1,
		LastError:     sendErr.Error(),
	}
	if err := s.retry.Push(ctx, job); err != nil {
		logger.Error("Failed to enqueue notification retry", "applicationID", app.ID, "channel", channel, "error", err)
		return
	}
	logger.Info("Notification queued for retry", "applicationID", app.ID, "channel", channel)
}
