package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/repository"
)

var applicationColumns = []string{
	"full_name", "business_name", "job_title", "tagline", "bio", "address",
	"email", "phone", "alt_phone", "whatsapp_enabled",
	"website", "linkedin", "instagram", "facebook", "twitter", "youtube",
	"other_social_name", "other_social_url",
	"primary_color", "secondary_color", "design_preference", "industry",
	"sections_include", "services_products", "achievements",
	"primary_cta", "custom_cta", "download_title", "terms_consent", "additional_notes",
	"selected_plan", "price", "image_path", "document_path",
	"status", "payment_status", "razorpay_order_id", "razorpay_payment_id",
	"application_date", "created_at", "updated_at",
}

var (
	selectColumns = "id, " + strings.Join(applicationColumns, ", ")
	insertSQL     = buildInsertSQL()
)

func buildInsertSQL() string {
	placeholders := make([]string, len(applicationColumns))
	for i := range applicationColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return "INSERT INTO applications (" + strings.Join(applicationColumns, ", ") +
		") VALUES (" + strings.Join(placeholders, ", ") + ") RETURNING id"
}

type rowScanner interface {
	Scan(dest ...any) error
}

type applicationRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewApplicationRepository(db *sql.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db, now: time.Now}
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	logger.EnterMethod("applicationRepository.Create", "email", a.Email, "plan", a.SelectedPlan)
	now := r.now().UTC()
	if a.ApplicationDate.IsZero() {
		a.ApplicationDate = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt
	if a.Status == "" {
		a.Status = domain.ApplicationStatusPending
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = domain.PaymentStatusUnpaid
	}
	if a.SectionsInclude == nil {
		a.SectionsInclude = []string{}
	}

	logger.DatabaseCall("INSERT", "applications", "email", a.Email, "plan", a.SelectedPlan)
	err := r.db.QueryRowContext(ctx, insertSQL,
		a.FullName, a.BusinessName, a.JobTitle, a.Tagline, a.Bio, a.Address,
		a.Email, a.Phone, a.AltPhone, a.WhatsappEnabled,
		a.Website, a.LinkedIn, a.Instagram, a.Facebook, a.Twitter, a.YouTube,
		a.OtherSocialName, a.OtherSocialURL,
		a.PrimaryColor, a.SecondaryColor, a.DesignPreference, a.Industry,
		pq.Array(a.SectionsInclude), a.ServicesProducts, a.Achievements,
		a.PrimaryCTA, a.CustomCTA, a.DownloadTitle, a.TermsConsent, a.AdditionalNotes,
		a.SelectedPlan, a.Price, a.ImagePath, a.DocumentPath,
		a.Status, a.PaymentStatus, a.RazorpayOrderID, a.RazorpayPaymentID,
		a.ApplicationDate, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "applicationID", a.ID)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.Create", err, "email", a.Email)
		return fmt.Errorf("insert application: %w", err)
	}
	logger.ExitMethod("applicationRepository.Create", "applicationID", a.ID)
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	logger.EnterMethod("applicationRepository.GetByID", "applicationID", id)
	query := `SELECT ` + selectColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		err = notFoundOr(err, id, "get application")
		exitMethod("applicationRepository.GetByID", err, "applicationID", id)
		return nil, err
	}
	logger.ExitMethod("applicationRepository.GetByID", "applicationID", id)
	return app, nil
}

func (r *applicationRepository) List(ctx context.Context, page, limit int) ([]domain.Application, int64, error) {
	logger.EnterMethod("applicationRepository.List", "page", page, "limit", limit)
	offset := int64(page-1) * int64(limit)
	if page < 1 || limit < 1 || offset < 0 {
		return nil, 0, fmt.Errorf("list applications: invalid page %d or limit %d", page, limit)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM applications`).Scan(&total); err != nil {
		logger.ExitMethodWithError("applicationRepository.List", err, "page", page)
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM applications ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	logger.DatabaseCall("SELECT", "applications", "limit", limit, "offset", offset)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.List", err, "page", page)
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.List", err, "page", page)
		return nil, 0, err
	}
	logger.DatabaseResult("SELECT", int64(len(apps)), nil, "total", total)
	logger.ExitMethod("applicationRepository.List", "count", len(apps), "total", total)
	return apps, total, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.Application, error) {
	logger.EnterMethod("applicationRepository.UpdateStatus", "applicationID", id, "status", status)
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + selectColumns
	logger.DatabaseCall("UPDATE", "applications", "applicationID", id, "status", status)
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, status, r.now().UTC(), id))
	if err != nil {
		err = notFoundOr(err, id, "update application status")
		exitMethod("applicationRepository.UpdateStatus", err, "applicationID", id)
		return nil, err
	}
	logger.ExitMethod("applicationRepository.UpdateStatus", "applicationID", id, "status", app.Status)
	return app, nil
}

func (r *applicationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	logger.DatabaseCall("DELETE", "applications", "applicationID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "applicationID", id)
		return false, fmt.Errorf("delete application %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err, "applicationID", id)
	if err != nil {
		return false, fmt.Errorf("delete application %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *applicationRepository) SetOrderID(ctx context.Context, id int64, orderID string) error {
	query := `UPDATE applications SET razorpay_order_id = $1, updated_at = $2 WHERE id = $3`
	logger.DatabaseCall("UPDATE", "applications", "applicationID", id, "orderID", orderID)
	res, err := r.db.ExecContext(ctx, query, orderID, r.now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "applicationID", id)
		return fmt.Errorf("set order id on application %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "applicationID", id)
	if err != nil {
		return fmt.Errorf("set order id on application %d: %w", id, err)
	}
	if n == 0 {
		return domain.NewNotFoundError(domain.CodeApplicationAbsent, fmt.Sprintf("application %d not found", id))
	}
	return nil
}

func (r *applicationRepository) MarkPaid(ctx context.Context, id int64, paymentID string, status domain.ApplicationStatus) (*domain.Application, error) {
	logger.EnterMethod("applicationRepository.MarkPaid", "applicationID", id, "paymentID", paymentID)
	terminal := make([]string, 0, 3)
	for _, s := range domain.TerminalStatuses() {
		terminal = append(terminal, string(s))
	}

	query := `UPDATE applications
	          SET razorpay_payment_id = $1,
	              payment_status = 'paid',
	              status = CASE WHEN status = ANY($2) THEN status ELSE $3 END,
	              updated_at = $4
	          WHERE id = $5 AND payment_status = 'unpaid'
	          RETURNING ` + selectColumns
	logger.DatabaseCall("UPDATE", "applications", "applicationID", id, "paymentID", paymentID)
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, paymentID, pq.Array(terminal), status, r.now().UTC(), id))
	if err != nil {
		err = notFoundOr(err, id, "mark application paid")
		exitMethod("applicationRepository.MarkPaid", err, "applicationID", id)
		return nil, err
	}
	logger.DatabaseResult("UPDATE", 1, nil, "applicationID", id)
	logger.ExitMethod("applicationRepository.MarkPaid", "applicationID", id, "status", app.Status)
	return app, nil
}

func (r *applicationRepository) ListAwaitingPayment(ctx context.Context, olderThan time.Time, limit int) ([]domain.Application, error) {
	query := `SELECT ` + selectColumns + ` FROM applications
	          WHERE payment_status = 'unpaid' AND razorpay_order_id IS NOT NULL AND updated_at < $1
	          ORDER BY updated_at ASC LIMIT $2`
	logger.EnterMethod("applicationRepository.ListAwaitingPayment", "olderThan", olderThan, "limit", limit)
	rows, err := r.db.QueryContext(ctx, query, olderThan.UTC(), limit)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.ListAwaitingPayment", err)
		return nil, fmt.Errorf("list applications awaiting payment: %w", err)
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.ListAwaitingPayment", err)
		return nil, err
	}
	logger.ExitMethod("applicationRepository.ListAwaitingPayment", "count", len(apps))
	return apps, nil
}

func scanApplications(rows *sql.Rows) ([]domain.Application, error) {
	apps := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	a := &domain.Application{}
	err := row.Scan(
		&a.ID,
		&a.FullName, &a.BusinessName, &a.JobTitle, &a.Tagline, &a.Bio, &a.Address,
		&a.Email, &a.Phone, &a.AltPhone, &a.WhatsappEnabled,
		&a.Website, &a.LinkedIn, &a.Instagram, &a.Facebook, &a.Twitter, &a.YouTube,
		&a.OtherSocialName, &a.OtherSocialURL,
		&a.PrimaryColor, &a.SecondaryColor, &a.DesignPreference, &a.Industry,
		pq.Array(&a.SectionsInclude), &a.ServicesProducts, &a.Achievements,
		&a.PrimaryCTA, &a.CustomCTA, &a.DownloadTitle, &a.TermsConsent, &a.AdditionalNotes,
		&a.SelectedPlan, &a.Price, &a.ImagePath, &a.DocumentPath,
		&a.Status, &a.PaymentStatus, &a.RazorpayOrderID, &a.RazorpayPaymentID,
		&a.ApplicationDate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.SectionsInclude == nil {
		a.SectionsInclude = []string{}
	}
	return a, nil
}

// exitMethod logs a missing row as a normal exit; only real failures are errors.
func exitMethod(method string, err error, args ...any) {
	if errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethod(method, append(args, "found", false)...)
		return
	}
	logger.ExitMethodWithError(method, err, args...)
}

func notFoundOr(err error, id int64, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(domain.CodeApplicationAbsent, fmt.Sprintf("application %d not found", id))
	}
	return fmt.Errorf("%s %d: %w", op, id, err)
}
