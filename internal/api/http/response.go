// Package http exposes the application, payment and admin endpoints over gorilla/mux.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
)

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`

	Error   string              `json:"error,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// errorResponder maps domain errors onto the failure envelope.
type errorResponder struct {
	development bool
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidStatus, domain.KindSignatureInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (e errorResponder) respond(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		appErr = domain.NewInternalError("Internal server error", err)
	}
	status := statusFor(appErr.Kind)

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "code", appErr.Code, "error", err)
		if e.development && appErr.Err != nil {
			message = appErr.Message + ": " + appErr.Err.Error()
		}
	}

	writeJSON(w, status, envelope{
		Success: false,
		Error:   appErr.Code,
		Message: message,
		Details: appErr.Details,
	})
}

func (e errorResponder) unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: domain.CodeUnauthorized, Message: message})
}
