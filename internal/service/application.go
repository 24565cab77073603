package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/pricing"
	"nfccard-backend/internal/repository"
	"nfccard-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	UploadFieldImage    = "image"
	UploadFieldDocument = "document"

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from overflowing the OFFSET.
	MaxPage = 1000000
)

var allowedExtensions = map[string][]string{
	UploadFieldImage:    {".jpg", ".jpeg", ".png", ".gif"},
	UploadFieldDocument: {".pdf", ".doc", ".docx"},
}

type applicationService struct {
	repo      repository.ApplicationRepository
	plans     *pricing.Resolver
	files     storage.Storage
	notifier  NotificationService
	maxUpload int64
	now       func() time.Time
}

func NewApplicationService(repo repository.ApplicationRepository, plans *pricing.Resolver, files storage.Storage, notifier NotificationService, maxUploadBytes int64) ApplicationService {
	return &applicationService{
		repo:      repo,
		plans:     plans,
		files:     files,
		notifier:  notifier,
		maxUpload: maxUploadBytes,
		now:       time.Now,
	}
}

// Submit validates the input, stores attachments, inserts the record and
// schedules both notification emails. The client-supplied price never
// reaches the record.
func (s *applicationService) Submit(ctx context.Context, input domain.ApplicationInput, uploads []Upload) (*domain.Application, error) {
	logger.EnterMethod("applicationService.Submit", "plan", input.SelectedPlan, "uploads", len(uploads))
	input.Normalize()
	if fields := input.Validate(); len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}
	if err := s.checkUploads(uploads); err != nil {
		return nil, err
	}

	res := s.plans.Resolve(input.SelectedPlan, input.ClientPrice)
	if res.FellBack && input.SelectedPlan != "" {
		logger.WarnContext(ctx, "Unknown plan requested, using default", "requested", input.SelectedPlan, "plan", res.Plan.Name)
	}
	if res.PriceMismatch {
		metrics.ClientPriceMismatch()
		logger.WarnContext(ctx, "Client price differs from plan price",
			"plan", res.Plan.Name, "clientPrice", *res.ClientPrice, "price", res.Price())
	}

	app := input.ToApplication(res.Plan.Name, res.Price(), s.now().UTC())

	saved, err := s.saveUploads(ctx, app, uploads)
	if err != nil {
		s.removeFiles(ctx, saved)
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.removeFiles(ctx, saved)
		logger.ExitMethodWithError("applicationService.Submit", err)
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	metrics.ApplicationSubmitted(app.SelectedPlan)
	logger.InfoContext(ctx, "Application submitted", "applicationID", app.ID, "plan", app.SelectedPlan, "price", app.Price)

	s.notifier.NotifySubmission(app)
	logger.ExitMethod("applicationService.Submit", "applicationID", app.ID)
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, id int64) (*domain.Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *applicationService) List(ctx context.Context, page, limit int) (*ApplicationPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Application{}
	}
	return &ApplicationPage{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Application, error) {
	st := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.IsValid() {
		return nil, domain.NewInvalidStatusError(status)
	}
	app, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Application status updated", "applicationID", id, "status", st)
	return app, nil
}

func (s *applicationService) Delete(ctx context.Context, id int64) error {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NewNotFoundError(domain.CodeApplicationAbsent, "Application not found")
	}

	var paths []string
	for _, p := range []*string{app.ImagePath, app.DocumentPath} {
		if p != nil && *p != "" {
			paths = append(paths, *p)
		}
	}
	s.removeFiles(ctx, paths)

	logger.InfoContext(ctx, "Application deleted", "applicationID", id)
	return nil
}

func (s *applicationService) ResendNotifications(ctx context.Context, id int64) (*ResendResult, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := s.notifier.NotifyResend(ctx, app)
	return &result, nil
}

func (s *applicationService) Plans() []domain.Plan {
	return s.plans.Catalog()
}

func (s *applicationService) TierPrices() map[string]float64 {
	return s.plans.TierPrices()
}

func (s *applicationService) checkUploads(uploads []Upload) error {
	seen := make(map[string]bool, len(uploads))
	for _, u := range uploads {
		exts, ok := allowedExtensions[u.Field]
		if !ok {
			return domain.NewUploadError(u.Field, fmt.Sprintf("unexpected file field %q", u.Field))
		}
		if seen[u.Field] {
			return domain.NewUploadError(u.Field, "only one file is allowed for "+u.Field)
		}
		seen[u.Field] = true

		if s.maxUpload > 0 && u.Size > s.maxUpload {
			return domain.NewUploadError(u.Field, fmt.Sprintf("%s exceeds the %d MB limit", u.Field, s.maxUpload/(1024*1024)))
		}
		ext := strings.ToLower(filepath.Ext(u.Filename))
		if !contains(exts, ext) {
			return domain.NewUploadError(u.Field, fmt.Sprintf("%s must be one of %s", u.Field, strings.Join(exts, ", ")))
		}
	}
	return nil
}

// saveUploads returns the paths written so far, even on error.
func (s *applicationService) saveUploads(ctx context.Context, app *domain.Application, uploads []Upload) ([]string, error) {
	var saved []string
	for _, u := range uploads {
		key := fmt.Sprintf("%s-%s%s", u.Field, uuid.NewString(), strings.ToLower(filepath.Ext(u.Filename)))
		path, err := s.files.Save(ctx, key, u.Content, u.ContentType)
		if err != nil {
			return saved, domain.NewInternalError("failed to store upload", err)
		}
		saved = append(saved, path)

		p := path
		switch u.Field {
		case UploadFieldImage:
			app.ImagePath = &p
		case UploadFieldDocument:
			app.DocumentPath = &p
		}
	}
	return saved, nil
}

func (s *applicationService) removeFiles(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			logger.WarnContext(ctx, "Failed to remove stored file", "path", p, "error", err)
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
