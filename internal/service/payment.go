package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/payment"
	"nfccard-backend/internal/repository"
)

type paymentService struct {
	repo    repository.ApplicationRepository
	gateway payment.Gateway
	secret  string
}

func NewPaymentService(repo repository.ApplicationRepository, gateway payment.Gateway, keySecret string) PaymentService {
	return &paymentService{repo: repo, gateway: gateway, secret: keySecret}
}

func (s *paymentService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*VerificationResult, error) {
	logger.EnterMethod("paymentService.VerifyPayment", "applicationID", in.ApplicationID, "orderID", in.OrderID)
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)

	var missing []domain.FieldError
	if in.ApplicationID <= 0 {
		missing = append(missing, domain.FieldError{Field: "applicationId", Message: "applicationId is required"})
	}
	if in.OrderID == "" {
		missing = append(missing, domain.FieldError{Field: "razorpay_order_id", Message: "razorpay_order_id is required"})
	}
	if in.PaymentID == "" {
		missing = append(missing, domain.FieldError{Field: "razorpay_payment_id", Message: "razorpay_payment_id is required"})
	}
	if strings.TrimSpace(in.Signature) == "" {
		missing = append(missing, domain.FieldError{Field: "razorpay_signature", Message: "razorpay_signature is required"})
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing)
	}

	if !payment.VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature) {
		metrics.PaymentVerified("invalid_signature")
		logger.WarnContext(ctx, "Payment signature mismatch", "applicationID", in.ApplicationID, "orderID", in.OrderID)
		return nil, domain.NewSignatureInvalidError("Payment signature verification failed")
	}

	app, err := s.repo.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.IsPaid() {
		return s.alreadyPaid(ctx, app, in.PaymentID)
	}
	if app.RazorpayOrderID == nil || *app.RazorpayOrderID != in.OrderID {
		metrics.PaymentVerified("order_mismatch")
		logger.WarnContext(ctx, "Payment order does not belong to application", "applicationID", app.ID, "orderID", in.OrderID)
		return nil, domain.NewSignatureInvalidError("Payment order does not match the application")
	}

	paid, err := s.repo.MarkPaid(ctx, app.ID, in.PaymentID, domain.ApplicationStatusApproved)
	if errors.Is(err, domain.ErrNotFound) {
		// Lost a race with another callback; decide from the current row.
		current, getErr := s.repo.GetByID(ctx, app.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.IsPaid() {
			return s.alreadyPaid(ctx, current, in.PaymentID)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	metrics.PaymentVerified("success")
	logger.InfoContext(ctx, "Payment verified", "applicationID", paid.ID, "orderID", in.OrderID, "paymentID", in.PaymentID)
	logger.ExitMethod("paymentService.VerifyPayment", "applicationID", paid.ID)
	return resultFor(paid, false), nil
}

func (s *paymentService) alreadyPaid(ctx context.Context, app *domain.Application, paymentID string) (*VerificationResult, error) {
	if app.RazorpayPaymentID != nil && *app.RazorpayPaymentID == paymentID {
		metrics.PaymentVerified("duplicate")
		logger.InfoContext(ctx, "Payment already recorded", "applicationID", app.ID, "paymentID", paymentID)
		return resultFor(app, true), nil
	}
	metrics.PaymentVerified("already_paid")
	return nil, domain.NewConflictError(domain.CodeAlreadyPaid, "Application has already been paid")
}

// ReconcileAwaiting records payments the browser never reported back.
func (s *paymentService) ReconcileAwaiting(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	logger.EnterMethod("paymentService.ReconcileAwaiting", "olderThan", olderThan, "limit", limit)
	apps, err := s.repo.ListAwaitingPayment(ctx, olderThan, limit)
	if err != nil {
		logger.ExitMethodWithError("paymentService.ReconcileAwaiting", err)
		return 0, err
	}

	recorded := 0
	for i := range apps {
		if err := ctx.Err(); err != nil {
			return recorded, err
		}
		app := &apps[i]
		if app.RazorpayOrderID == nil {
			continue
		}

		payments, err := s.gateway.FetchOrderPayments(ctx, *app.RazorpayOrderID)
		if err != nil {
			logger.Error("Failed to fetch order payments", "applicationID", app.ID, "orderID", *app.RazorpayOrderID, "error", err)
			continue
		}
		for _, p := range payments {
			if !p.Captured() {
				continue
			}
			_, err := s.repo.MarkPaid(ctx, app.ID, p.ID, domain.ApplicationStatusApproved)
			if errors.Is(err, domain.ErrNotFound) {
				// Paid by a browser callback in the meantime.
				break
			}
			if err != nil {
				logger.Error("Failed to record reconciled payment", "applicationID", app.ID, "paymentID", p.ID, "error", err)
				break
			}
			metrics.PaymentReconciled()
			logger.Info("Payment reconciled", "applicationID", app.ID, "orderID", *app.RazorpayOrderID, "paymentID", p.ID)
			recorded++
			break
		}
	}
	logger.ExitMethod("paymentService.ReconcileAwaiting", "checked", len(apps), "recorded", recorded)
	return recorded, nil
}

func resultFor(app *domain.Application, alreadyPaid bool) *VerificationResult {
	r := &VerificationResult{
		ApplicationID: app.ID,
		PaymentStatus: app.PaymentStatus,
		Status:        app.Status,
		AlreadyPaid:   alreadyPaid,
	}
	if app.RazorpayOrderID != nil {
		r.OrderID = *app.RazorpayOrderID
	}
	if app.RazorpayPaymentID != nil {
		r.PaymentID = *app.RazorpayPaymentID
	}
	return r
}
