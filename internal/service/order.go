package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/payment"
	"nfccard-backend/internal/repository"
)

type orderService struct {
	repo     repository.ApplicationRepository
	gateway  payment.Gateway
	currency string
	now      func() time.Time
}

func NewOrderService(repo repository.ApplicationRepository, gateway payment.Gateway, currency string) OrderService {
	if currency == "" {
		currency = "INR"
	}
	return &orderService{repo: repo, gateway: gateway, currency: currency, now: time.Now}
}

// CreateOrder opens a gateway order for the application's stored price and
// records the order id. No database transaction spans the gateway call.
func (s *orderService) CreateOrder(ctx context.Context, applicationID int64) (*OrderResult, error) {
	logger.EnterMethod("orderService.CreateOrder", "applicationID", applicationID)
	if applicationID <= 0 {
		return nil, domain.NewValidationError([]domain.FieldError{{Field: "applicationId", Message: "applicationId is required"}})
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.IsPaid() {
		metrics.OrderCreated("already_paid")
		return nil, domain.NewConflictError(domain.CodeAlreadyPaid, "Application has already been paid")
	}
	if app.Plan().RequiresQuote() {
		metrics.OrderCreated("price_unavailable")
		return nil, domain.NewNotFoundError(domain.CodePriceUnavailable, "Price not available for the selected plan")
	}

	req := payment.OrderRequest{
		Amount:   payment.ToMinorUnits(app.Price),
		Currency: s.currency,
		Receipt:  fmt.Sprintf("rcpt_%d_%d", app.ID, s.now().UnixMilli()),
		Notes: map[string]string{
			"applicationId": strconv.FormatInt(app.ID, 10),
			"plan":          app.SelectedPlan,
			"email":         app.Email,
		},
	}
	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		metrics.OrderCreated("gateway_error")
		logger.ErrorContext(ctx, "Gateway order creation failed", "applicationID", app.ID, "error", err)
		return nil, domain.NewUpstreamError("Failed to create payment order", err)
	}

	if err := s.repo.SetOrderID(ctx, app.ID, order.ID); err != nil {
		// The gateway order exists but the record does not point at it.
		metrics.OrderUnrecorded()
		logger.ErrorContext(ctx, "order_persist_failed",
			"applicationID", app.ID, "orderID", order.ID, "amount", order.Amount, "error", err)
		return nil, domain.NewUpstreamError("Failed to record payment order", err)
	}

	metrics.OrderCreated("success")
	logger.InfoContext(ctx, "Payment order created", "applicationID", app.ID, "orderID", order.ID, "amount", order.Amount)
	logger.ExitMethod("orderService.CreateOrder", "applicationID", app.ID, "orderID", order.ID)

	currency := order.Currency
	if currency == "" {
		currency = req.Currency
	}
	amount := order.Amount
	if amount == 0 {
		amount = req.Amount
	}
	return &OrderResult{
		ApplicationID: app.ID,
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      currency,
		Receipt:       req.Receipt,
		KeyID:         s.gateway.KeyID(),
	}, nil
}
