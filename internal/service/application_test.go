package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/pricing"
	"nfccard-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const maxUpload = 5 * 1024 * 1024

func validInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		FullName:     "  Asha Rao ",
		BusinessName: "Rao Designs",
		Email:        "Asha@Example.COM",
		Phone:        "+91 (987) 654-3210",
		SelectedPlan: "Entrepreneur Plan",
	}
}

func newApplicationService(repo *MockApplicationRepo, files *MockStorage, notifier *MockNotificationService) service.ApplicationService {
	plans, err := pricing.NewResolver(pricing.DefaultPlans(), pricing.DefaultPlanName)
	if err != nil {
		panic(err)
	}
	return service.NewApplicationService(repo, plans, files, notifier, maxUpload)
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses Table Price Over Client Price", func(t *testing.T) {
		repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
		svc := newApplicationService(repo, files, notifier)

		tampered := 1.0
		in := validInput()
		in.ClientPrice = &tampered

		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.Price == 1499 && a.SelectedPlan == "Entrepreneur Plan" &&
				a.Email == "asha@example.com" && a.FullName == "Asha Rao" &&
				a.Status == domain.ApplicationStatusPending && a.PaymentStatus == domain.PaymentStatusUnpaid
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Application).ID = 42
		}).Return(nil).Once()
		notifier.On("NotifySubmission", mock.AnythingOfType("*domain.Application")).Once()

		app, err := svc.Submit(ctx, in, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), app.ID)
		assert.Equal(t, 1499.0, app.Price)
		assert.Equal(t, domain.DefaultPrimaryColor, app.PrimaryColor)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Unknown Plan Falls Back", func(t *testing.T) {
		repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
		svc := newApplicationService(repo, files, notifier)

		in := validInput()
		in.SelectedPlan = "Platinum"
		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.SelectedPlan == pricing.DefaultPlanName && a.Price == 699
		})).Return(nil).Once()
		notifier.On("NotifySubmission", mock.Anything).Once()

		_, err := svc.Submit(ctx, in, nil)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Collects Every Validation Error", func(t *testing.T) {
		repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
		svc := newApplicationService(repo, files, notifier)

		_, err := svc.Submit(ctx, domain.ApplicationInput{Email: "nope", Phone: "0123"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var appErr *domain.AppError
		require.True(t, errors.As(err, &appErr))
		fields := make([]string, 0, len(appErr.Details))
		for _, d := range appErr.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"fullName", "businessName", "email", "phone"}, fields)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Stores Uploads", func(t *testing.T) {
		repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
		svc := newApplicationService(repo, files, notifier)

		uploads := []service.Upload{
			{Field: "image", Filename: "Logo.PNG", Size: 1024, ContentType: "image/png", Content: strings.NewReader("png")},
			{Field: "document", Filename: "brochure.pdf", Size: 2048, ContentType: "application/pdf", Content: strings.NewReader("pdf")},
		}
		files.On("Save", ctx, mock.MatchedBy(func(k string) bool {
			return strings.HasPrefix(k, "image-") && strings.HasSuffix(k, ".png")
		}), mock.Anything, "image/png").Return("uploads/image-1.png", nil).Once()
		files.On("Save", ctx, mock.MatchedBy(func(k string) bool {
			return strings.HasPrefix(k, "document-") && strings.HasSuffix(k, ".pdf")
		}), mock.Anything, "application/pdf").Return("uploads/document-1.pdf", nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.ImagePath != nil && *a.ImagePath == "uploads/image-1.png" &&
				a.DocumentPath != nil && *a.DocumentPath == "uploads/document-1.pdf"
		})).Return(nil).Once()
		notifier.On("NotifySubmission", mock.Anything).Once()

		_, err := svc.Submit(ctx, validInput(), uploads)
		require.NoError(t, err)
		files.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects Bad Uploads", func(t *testing.T) {
		cases := []struct {
			name    string
			uploads []service.Upload
			field   string
		}{
			{"Wrong Extension", []service.Upload{{Field: "image", Filename: "logo.bmp", Size: 10}}, "image"},
			{"Too Large", []service.Upload{{Field: "document", Filename: "big.pdf", Size: maxUpload + 1}}, "document"},
			{"Duplicate Field", []service.Upload{
				{Field: "image", Filename: "a.png", Size: 1},
				{Field: "image", Filename: "b.png", Size: 1},
			}, "image"},
			{"Unknown Field", []service.Upload{{Field: "avatar", Filename: "a.png", Size: 1}}, "avatar"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
				svc := newApplicationService(repo, files, notifier)

				_, err := svc.Submit(ctx, validInput(), tc.uploads)
				var appErr *domain.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, domain.CodeInvalidUpload, appErr.Code)
				require.Len(t, appErr.Details, 1)
				assert.Equal(t, tc.field, appErr.Details[0].Field)
				files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Removes Files When Insert Fails", func(t *testing.T) {
		repo, files, notifier := new(MockApplicationRepo), new(MockStorage), new(MockNotificationService)
		svc := newApplicationService(repo, files, notifier)

		uploads := []service.Upload{{Field: "image", Filename: "a.jpg", Size: 1, ContentType: "image/jpeg", Content: strings.NewReader("x")}}
		files.On("Save", ctx, mock.Anything, mock.Anything, "image/jpeg").Return("uploads/image-x.jpg", nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()
		files.On("Delete", ctx, "uploads/image-x.jpg").Return(nil).Once()

		_, err := svc.Submit(ctx, validInput(), uploads)
		require.Error(t, err)
		files.AssertExpectations(t)
		notifier.AssertNotCalled(t, "NotifySubmission", mock.Anything)
	})
}

func TestApplicationService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Pagination", func(t *testing.T) {
		repo := new(MockApplicationRepo)
		svc := newApplicationService(repo, nil, nil)

		repo.On("List", ctx, 2, 10).Return(make([]domain.Application, 10), int64(25), nil).Once()

		page, err := svc.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 10)
		assert.Equal(t, service.Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3}, page.Pagination)
	})

	t.Run("Defaults And Cap", func(t *testing.T) {
		repo := new(MockApplicationRepo)
		svc := newApplicationService(repo, nil, nil)

		repo.On("List", ctx, 1, 10).Return([]domain.Application(nil), int64(0), nil).Once()
		repo.On("List", ctx, 1, 100).Return([]domain.Application{}, int64(0), nil).Once()

		page, err := svc.List(ctx, 0, -5)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 0, page.Pagination.TotalPages)

		page, err = svc.List(ctx, 1, 500)
		require.NoError(t, err)
		assert.Equal(t, 100, page.Pagination.Limit)
		repo.AssertExpectations(t)
	})

	t.Run("Huge Page Is Clamped", func(t *testing.T) {
		repo := new(MockApplicationRepo)
		svc := newApplicationService(repo, nil, nil)

		repo.On("List", ctx, service.MaxPage, 100).Return([]domain.Application(nil), int64(25), nil).Once()

		page, err := svc.List(ctx, math.MaxInt64/100+2, 100)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, service.MaxPage, page.Pagination.Page)
		repo.AssertExpectations(t)
	})
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApplicationRepo)
	svc := newApplicationService(repo, nil, nil)

	t.Run("Valid", func(t *testing.T) {
		repo.On("UpdateStatus", ctx, int64(7), domain.ApplicationStatusCompleted).
			Return(&domain.Application{ID: 7, Status: domain.ApplicationStatusCompleted}, nil).Once()

		app, err := svc.UpdateStatus(ctx, 7, " Completed ")
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusCompleted, app.Status)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, 7, "shipped")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("Missing", func(t *testing.T) {
		repo.On("UpdateStatus", ctx, int64(99), domain.ApplicationStatusRejected).
			Return(nil, domain.NewNotFoundError(domain.CodeApplicationAbsent, "Application not found")).Once()

		_, err := svc.UpdateStatus(ctx, 99, "rejected")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
	repo.AssertExpectations(t)
}

func TestApplicationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes Stored Files", func(t *testing.T) {
		repo, files := new(MockApplicationRepo), new(MockStorage)
		svc := newApplicationService(repo, files, nil)

		img := "uploads/image-a.png"
		repo.On("GetByID", ctx, int64(3)).Return(&domain.Application{ID: 3, ImagePath: &img}, nil).Once()
		repo.On("Delete", ctx, int64(3)).Return(true, nil).Once()
		files.On("Delete", ctx, img).Return(errors.New("gone")).Once()

		assert.NoError(t, svc.Delete(ctx, 3))
		files.AssertExpectations(t)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(MockApplicationRepo)
		svc := newApplicationService(repo, nil, nil)

		repo.On("GetByID", ctx, int64(4)).Return(nil, domain.NewNotFoundError(domain.CodeApplicationAbsent, "Application not found")).Once()

		assert.ErrorIs(t, svc.Delete(ctx, 4), domain.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestApplicationService_ResendNotifications(t *testing.T) {
	ctx := context.Background()
	repo, notifier := new(MockApplicationRepo), new(MockNotificationService)
	svc := newApplicationService(repo, nil, notifier)

	app := &domain.Application{ID: 5, Email: "a@b.co"}
	repo.On("GetByID", ctx, int64(5)).Return(app, nil).Once()
	notifier.On("NotifyResend", ctx, app).Return(service.ResendResult{AdminOK: false, ApplicantOK: true}).Once()

	res, err := svc.ResendNotifications(ctx, 5)
	require.NoError(t, err)
	assert.False(t, res.AdminOK)
	assert.True(t, res.ApplicantOK)
}
