package service_test

import (
	"context"
	"io"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/payment"
	"nfccard-backend/internal/queue"
	"nfccard-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) List(ctx context.Context, page, limit int) ([]domain.Application, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]domain.Application), args.Get(1).(int64), args.Error(2)
}
func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.Application, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockApplicationRepo) SetOrderID(ctx context.Context, id int64, orderID string) error {
	args := m.Called(ctx, id, orderID)
	return args.Error(0)
}
func (m *MockApplicationRepo) MarkPaid(ctx context.Context, id int64, paymentID string, status domain.ApplicationStatus) (*domain.Application, error) {
	args := m.Called(ctx, id, paymentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]domain.Application, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Get(0).([]domain.Application), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}
func (m *MockGateway) FetchOrderPayments(ctx context.Context, orderID string) ([]payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}
func (m *MockGateway) KeyID() string {
	return "rzp_test_key"
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifySubmission(app *domain.Application) {
	m.Called(app)
}
func (m *MockNotificationService) NotifyResend(ctx context.Context, app *domain.Application) service.ResendResult {
	args := m.Called(ctx, app)
	return args.Get(0).(service.ResendResult)
}
func (m *MockNotificationService) Deliver(ctx context.Context, app *domain.Application, channel queue.Channel) error {
	args := m.Called(ctx, app, channel)
	return args.Error(0)
}
func (m *MockNotificationService) TestTransport(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockNotificationService) Wait() {}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendApplicationEmail(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockEmailService) SendConfirmationEmail(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockEmailService) VerifyTransport(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg service.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMailer) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockMailer) Name() string { return "mock" }

// MockRetryQueue
type MockRetryQueue struct {
	mock.Mock
}

func (m *MockRetryQueue) Push(ctx context.Context, job queue.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
func (m *MockRetryQueue) Pop(ctx context.Context) (*queue.NotificationJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.NotificationJob), args.Error(1)
}
func (m *MockRetryQueue) Len(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
