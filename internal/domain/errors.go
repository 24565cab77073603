package domain

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindInvalidStatus
	KindSignatureInvalid
	KindConflict
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidStatus:
		return "invalid_status"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error codes surfaced in the JSON error envelope.
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidUpload     = "INVALID_UPLOAD"
	CodeNotFound          = "NOT_FOUND"
	CodeApplicationAbsent = "APPLICATION_NOT_FOUND"
	CodePriceUnavailable  = "PRICE_NOT_AVAILABLE"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodeAlreadyPaid       = "ALREADY_PAID"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimited       = "RATE_LIMITED"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []FieldError
	Err     error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		parts := make([]string, len(e.Details))
		for i, d := range e.Details {
			parts[i] = d.String()
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation       = &AppError{Kind: KindValidation, Code: CodeValidationFailed, Message: "validation failed"}
	ErrNotFound         = &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
	ErrInvalidStatus    = &AppError{Kind: KindInvalidStatus, Code: CodeInvalidStatus, Message: "invalid status"}
	ErrSignatureInvalid = &AppError{Kind: KindSignatureInvalid, Code: CodeInvalidSignature, Message: "invalid payment signature"}
	ErrConflict         = &AppError{Kind: KindConflict, Code: CodeAlreadyPaid, Message: "conflict"}
	ErrUpstream         = &AppError{Kind: KindUpstream, Code: CodeUpstream, Message: "upstream service error"}
	ErrInternal         = &AppError{Kind: KindInternal, Code: CodeInternal, Message: "internal server error"}
)

func NewValidationError(fields []FieldError) *AppError {
	return &AppError{Kind: KindValidation, Code: CodeValidationFailed, Message: "Validation failed", Details: fields}
}

func NewUploadError(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    CodeInvalidUpload,
		Message: fmt.Sprintf("Invalid upload for field %q: %s", field, message),
		Details: []FieldError{{Field: field, Message: message}},
	}
}

func NewNotFoundError(code, message string) *AppError {
	if code == "" {
		code = CodeNotFound
	}
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewInvalidStatusError(status string) *AppError {
	valid := make([]string, len(applicationStatuses))
	for i, s := range applicationStatuses {
		valid[i] = string(s)
	}
	return &AppError{
		Kind:    KindInvalidStatus,
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("Invalid status %q", status),
		Details: []FieldError{{Field: "status", Message: "must be one of " + strings.Join(valid, ", ")}},
	}
}

func NewSignatureInvalidError(message string) *AppError {
	return &AppError{Kind: KindSignatureInvalid, Code: CodeInvalidSignature, Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Code: CodeUpstream, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}
