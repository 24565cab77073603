package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/service"
)

// Limits for the non-file part of a submission.
const (
	maxFormBytes      = 8 << 20
	multipartOverhead = 64 << 10
	defaultMaxUpload  = 5 << 20
)

type ApplicationHandler struct {
	apps          service.ApplicationService
	notifications service.NotificationService
	maxUpload     int64
	errs          errorResponder
}

func NewApplicationHandler(apps service.ApplicationService, notifications service.NotificationService, maxUpload int64, errs errorResponder) *ApplicationHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &ApplicationHandler{apps: apps, notifications: notifications, maxUpload: maxUpload, errs: errs}
}

// submitRequest is the JSON body shape; price is read but never trusted.
type submitRequest struct {
	domain.ApplicationInput
	Price *float64 `json:"price"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Two attachments plus form fields.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUpload+maxFormBytes+multipartOverhead)

	var (
		input   domain.ApplicationInput
		uploads []service.Upload
		err     error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		input, uploads, err = h.parseMultipart(r)
	case "application/x-www-form-urlencoded":
		if err = r.ParseForm(); err == nil {
			input = inputFromForm(r.PostForm)
		}
	default:
		var req submitRequest
		if err = json.NewDecoder(r.Body).Decode(&req); err == nil {
			input = req.ApplicationInput
			input.ClientPrice = req.Price
		}
	}
	if err != nil {
		h.errs.respond(w, r, badRequest(err))
		return
	}
	app, err := h.apps.Submit(r.Context(), input, uploads)
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, "Application submitted successfully", map[string]interface{}{
		"id":            app.ID,
		"applicationId": app.ID,
		"selectedPlan":  app.SelectedPlan,
		"price":         app.Price,
		"status":        app.Status,
		"paymentStatus": app.PaymentStatus,
	})
}

// parseMultipart streams the parts so each file is capped on its own and an
// oversized one is reported under its field name.
func (h *ApplicationHandler) parseMultipart(r *http.Request) (domain.ApplicationInput, []service.Upload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return domain.ApplicationInput{}, nil, err
	}

	values := make(map[string][]string)
	var (
		uploads   []service.Upload
		formBytes int64
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.ApplicationInput{}, nil, err
		}
		field := part.FormName()
		if field == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			v, err := io.ReadAll(io.LimitReader(part, maxFormBytes-formBytes+1))
			part.Close()
			if err != nil {
				return domain.ApplicationInput{}, nil, err
			}
			if formBytes += int64(len(v)); formBytes > maxFormBytes {
				return domain.ApplicationInput{}, nil, domain.NewValidationError([]domain.FieldError{{Field: field, Message: "form fields are too large"}})
			}
			values[field] = append(values[field], string(v))
			continue
		}

		for _, u := range uploads {
			if u.Field == field {
				part.Close()
				return domain.ApplicationInput{}, nil, domain.NewUploadError(field, "only one file is allowed for "+field)
			}
		}
		data, err := io.ReadAll(io.LimitReader(part, h.maxUpload+1))
		part.Close()
		var tooLarge *http.MaxBytesError
		if int64(len(data)) > h.maxUpload || errors.As(err, &tooLarge) {
			return domain.ApplicationInput{}, nil, domain.NewUploadError(field, fmt.Sprintf("%s exceeds the %d MB limit", field, h.maxUpload/(1024*1024)))
		}
		if err != nil {
			return domain.ApplicationInput{}, nil, domain.NewUploadError(field, "failed to read "+field)
		}
		uploads = append(uploads, service.Upload{
			Field:       field,
			Filename:    part.FileName(),
			Size:        int64(len(data)),
			ContentType: part.Header.Get("Content-Type"),
			Content:     bytes.NewReader(data),
		})
	}
	return inputFromForm(values), uploads, nil
}

func inputFromForm(form map[string][]string) domain.ApplicationInput {
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	in := domain.ApplicationInput{
		FullName:         get("fullName"),
		BusinessName:     get("businessName"),
		JobTitle:         get("jobTitle"),
		Tagline:          get("tagline"),
		Bio:              get("bio"),
		Address:          get("address"),
		Email:            get("email"),
		Phone:            get("phone"),
		AltPhone:         get("altPhone"),
		WhatsappEnabled:  formBool(get("whatsappEnabled")),
		Website:          get("website"),
		LinkedIn:         get("linkedin"),
		Instagram:        get("instagram"),
		Facebook:         get("facebook"),
		Twitter:          get("twitter"),
		YouTube:          get("youtube"),
		OtherSocialName:  get("otherSocialName"),
		OtherSocialURL:   get("otherSocialUrl"),
		PrimaryColor:     get("primaryColor"),
		SecondaryColor:   get("secondaryColor"),
		DesignPreference: get("designPreference"),
		Industry:         get("industry"),
		SectionsInclude:  parseSections(form["sectionsInclude"]),
		ServicesProducts: get("servicesProducts"),
		Achievements:     get("achievements"),
		PrimaryCTA:       get("primaryCta"),
		CustomCTA:        get("customCta"),
		DownloadTitle:    get("downloadTitle"),
		TermsConsent:     formBool(get("termsConsent")),
		AdditionalNotes:  get("additionalNotes"),
		SelectedPlan:     get("selectedPlan"),
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(get("price")), 64); err == nil {
		in.ClientPrice = &p
	}
	return in
}

// parseSections accepts repeated values or a single JSON array.
func parseSections(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var arr []string
		if err := json.Unmarshal([]byte(values[0]), &arr); err == nil {
			return arr
		}
	}
	return values
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "yes", "1":
		return true
	}
	return false
}

func badRequest(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.NewUploadError("request", "request body is too large")
	}
	return domain.NewValidationError([]domain.FieldError{{Field: "body", Message: "malformed request body"}})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.apps.List(r.Context(), page, limit)
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: result.Items, Pagination: result.Pagination})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.apps.Get(r.Context(), id)
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", app)
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errs.respond(w, r, badRequest(err))
		return
	}

	app, err := h.apps.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Application status updated", app)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.apps.Delete(r.Context(), id); err != nil {
		h.errs.respond(w, r, err)
		return
	}
	if claims, ok := AdminFromContext(r.Context()); ok {
		logger.InfoContext(r.Context(), "Application deleted by admin", "applicationID", id, "admin", claims.Email)
	}
	respondOK(w, http.StatusOK, "Application deleted successfully", nil)
}

func (h *ApplicationHandler) ResendEmails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	res, err := h.apps.ResendNotifications(r.Context(), id)
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	message := "Emails resent"
	if !res.AdminOK || !res.ApplicantOK {
		message = "Some emails could not be sent"
	}
	respondOK(w, http.StatusOK, message, res)
}

func (h *ApplicationHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.TestTransport(r.Context()); err != nil {
		h.errs.respond(w, r, domain.NewUpstreamError("Email transport check failed", err))
		return
	}
	respondOK(w, http.StatusOK, "Email transport is working", nil)
}

// packEntry mirrors the plan object the checkout page reads.
type packEntry struct {
	Type     string   `json:"type"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
}

type packsResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	PackPrice map[string]float64   `json:"pack_price"`
	Plans     map[string]packEntry `json:"plans"`
	Data      []domain.Plan        `json:"data"`
}

// Packs serves pack_price and plans at the top level, with the ordered catalog under data.
func (h *ApplicationHandler) Packs(w http.ResponseWriter, r *http.Request) {
	plans := h.apps.Plans()
	byName := make(map[string]packEntry, len(plans))
	for _, p := range plans {
		byName[p.Name] = packEntry{Type: p.Tier, Price: p.Price, Features: p.Features}
	}
	writeJSON(w, http.StatusOK, packsResponse{
		Success:   true,
		Message:   "Pack prices fetched successfully",
		PackPrice: h.apps.TierPrices(),
		Plans:     byName,
		Data:      plans,
	})
}

func (h *ApplicationHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.errs.respond(w, r, domain.NewValidationError([]domain.FieldError{{Field: "id", Message: "id must be a positive integer"}}))
		return 0, false
	}
	return id, true
}
