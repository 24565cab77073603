package service

import (
	"context"
	"io"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/queue"
)

// Upload is one multipart attachment on a submission.
type Upload struct {
	Field       string // "image" or "document"
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ApplicationPage struct {
	Items      []domain.Application
	Pagination Pagination
}

// ResendResult reports each notification channel independently.
type ResendResult struct {
	AdminOK     bool `json:"adminEmail"`
	ApplicantOK bool `json:"confirmationEmail"`
}

type OrderResult struct {
	ApplicationID int64  `json:"applicationId"`
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Receipt       string `json:"receipt"`
	KeyID         string `json:"key"`
}

type VerifyPaymentInput struct {
	ApplicationID int64
	OrderID       string
	PaymentID     string
	Signature     string
}

type VerificationResult struct {
	ApplicationID int64                    `json:"applicationId"`
	OrderID       string                   `json:"orderId"`
	PaymentID     string                   `json:"paymentId"`
	PaymentStatus domain.PaymentStatus     `json:"paymentStatus"`
	Status        domain.ApplicationStatus `json:"status"`
	// AlreadyPaid marks a repeated callback for a payment that was already recorded.
	AlreadyPaid bool `json:"alreadyPaid"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}

type ApplicationService interface {
	Submit(ctx context.Context, input domain.ApplicationInput, uploads []Upload) (*domain.Application, error)
	Get(ctx context.Context, id int64) (*domain.Application, error)
	List(ctx context.Context, page, limit int) (*ApplicationPage, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Application, error)
	Delete(ctx context.Context, id int64) error
	ResendNotifications(ctx context.Context, id int64) (*ResendResult, error)
	Plans() []domain.Plan
	TierPrices() map[string]float64
}

type OrderService interface {
	CreateOrder(ctx context.Context, applicationID int64) (*OrderResult, error)
}

type PaymentService interface {
	VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*VerificationResult, error)
	// ReconcileAwaiting asks the gateway about unpaid orders older than the
	// cutoff and records captured payments. Returns how many were recorded.
	ReconcileAwaiting(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type NotificationService interface {
	// NotifySubmission dispatches both emails in the background and returns immediately.
	NotifySubmission(app *domain.Application)
	NotifyResend(ctx context.Context, app *domain.Application) ResendResult
	Deliver(ctx context.Context, app *domain.Application, channel queue.Channel) error
	TestTransport(ctx context.Context) error
	// Wait blocks until background submissions have finished.
	Wait()
}

type EmailService interface {
	SendApplicationEmail(ctx context.Context, app *domain.Application) error
	SendConfirmationEmail(ctx context.Context, app *domain.Application) error
	VerifyTransport(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
