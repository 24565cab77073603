package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/queue"
	"nfccard-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyResend(t *testing.T) {
	ctx := context.Background()
	app := &domain.Application{ID: 8, FullName: "Ravi", Email: "ravi@example.com"}

	t.Run("Admin Fails Applicant Succeeds", func(t *testing.T) {
		email := new(MockEmailService)
		svc := service.NewNotificationService(email, nil, time.Second)

		email.On("SendApplicationEmail", ctx, app).Return(errors.New("smtp auth failed")).Once()
		email.On("SendConfirmationEmail", ctx, app).Return(nil).Once()

		res := svc.NotifyResend(ctx, app)
		assert.False(t, res.AdminOK)
		assert.True(t, res.ApplicantOK)
		email.AssertExpectations(t)
	})

	t.Run("Panic Is Contained", func(t *testing.T) {
		email := new(MockEmailService)
		svc := service.NewNotificationService(email, nil, time.Second)

		email.On("SendApplicationEmail", ctx, app).Return(nil).Once()
		email.On("SendConfirmationEmail", ctx, app).Run(func(mock.Arguments) { panic("boom") }).Once()

		res := svc.NotifyResend(ctx, app)
		assert.True(t, res.AdminOK)
		assert.False(t, res.ApplicantOK)
	})
}

func TestNotificationService_NotifySubmission(t *testing.T) {
	app := &domain.Application{ID: 9, FullName: "Meera", Email: "meera@example.com"}

	t.Run("Queues Failed Channel", func(t *testing.T) {
		email, retry := new(MockEmailService), new(MockRetryQueue)
		svc := service.NewNotificationService(email, retry, time.Second)

		email.On("SendApplicationEmail", mock.Anything, mock.Anything).Return(nil).Once()
		email.On("SendConfirmationEmail", mock.Anything, mock.Anything).Return(errors.New("mailbox full")).Once()
		retry.On("Push", mock.Anything, mock.MatchedBy(func(j queue.NotificationJob) bool {
			return j.ApplicationID == 9 && j.Channel == queue.ChannelApplicant && j.Attempts == 1 &&
				strings.Contains(j.LastError, "mailbox full")
		})).Return(nil).Once()

		svc.NotifySubmission(app)
		svc.Wait()

		email.AssertExpectations(t)
		retry.AssertExpectations(t)
	})

	t.Run("Runs After Request Context Ends", func(t *testing.T) {
		email := new(MockEmailService)
		svc := service.NewNotificationService(email, nil, time.Second)

		email.On("SendApplicationEmail", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).Return(nil).Once()
		email.On("SendConfirmationEmail", mock.Anything, mock.Anything).Return(nil).Once()

		svc.NotifySubmission(app)
		svc.Wait()
		email.AssertExpectations(t)
	})
}

func TestNotificationService_Deliver(t *testing.T) {
	ctx := context.Background()
	email := new(MockEmailService)
	svc := service.NewNotificationService(email, nil, time.Second)

	err := svc.Deliver(ctx, &domain.Application{ID: 1}, queue.Channel("sms"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown notification channel")
}

func TestEmailService(t *testing.T) {
	ctx := context.Background()
	app := &domain.Application{
		ID: 31, FullName: "Kiran <b>Das</b>", BusinessName: "Das & Co", Email: "kiran@example.com",
		SelectedPlan: "Starter Pack", Price: 699, SectionsInclude: []string{"about", "gallery"},
		ApplicationDate: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}

	t.Run("Admin Email", func(t *testing.T) {
		mailer := new(MockMailer)
		svc := service.NewEmailService(mailer, "noreply@nfccard.in", "NFC Card Team", "admin@nfccard.in")

		mailer.On("Send", ctx, mock.MatchedBy(func(m service.Message) bool {
			return m.To == "admin@nfccard.in" &&
				m.Subject == "New Application from Kiran <b>Das</b>" &&
				strings.Contains(m.HTML, "Kiran &lt;b&gt;Das&lt;/b&gt;") &&
				strings.Contains(m.HTML, "about, gallery") &&
				strings.Contains(m.Text, "Price: 699.00")
		})).Return(nil).Once()

		require.NoError(t, svc.SendApplicationEmail(ctx, app))
		mailer.AssertExpectations(t)
	})

	t.Run("Confirmation Email", func(t *testing.T) {
		mailer := new(MockMailer)
		svc := service.NewEmailService(mailer, "noreply@nfccard.in", "NFC Card Team", "admin@nfccard.in")

		mailer.On("Send", ctx, mock.MatchedBy(func(m service.Message) bool {
			return m.To == "kiran@example.com" && m.FromName == "NFC Card Team" &&
				strings.HasPrefix(m.Subject, "Thanks for your application")
		})).Return(errors.New("rejected")).Once()

		assert.Error(t, svc.SendConfirmationEmail(ctx, app))
	})

	t.Run("Verify Transport", func(t *testing.T) {
		mailer := new(MockMailer)
		svc := service.NewEmailService(mailer, "noreply@nfccard.in", "NFC Card Team", "admin@nfccard.in")

		mailer.On("Verify", ctx).Return(nil).Once()
		assert.NoError(t, svc.VerifyTransport(ctx))
	})
}
