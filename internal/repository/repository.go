package repository

import (
	"context"
	"time"

	"nfccard-backend/internal/domain"
)

// ApplicationRepository persists applications. Lookups on a missing id
// return an error matching domain.ErrNotFound.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	// List returns one page, newest first, plus the total row count.
	List(ctx context.Context, page, limit int) ([]domain.Application, int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.Application, error)
	Delete(ctx context.Context, id int64) (bool, error)

	SetOrderID(ctx context.Context, id int64, orderID string) error
	// MarkPaid records a verified payment in a single statement. It only
	// matches unpaid rows, and leaves a terminal status untouched.
	MarkPaid(ctx context.Context, id int64, paymentID string, status domain.ApplicationStatus) (*domain.Application, error)
	ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]domain.Application, error)
}
