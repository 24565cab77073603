package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nfccard-backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
	errs errorResponder
}

func NewAuthHandler(auth service.AuthService, errs errorResponder) *AuthHandler {
	return &AuthHandler{auth: auth, errs: errs}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<14)).Decode(&req); err != nil {
		h.errs.respond(w, r, badRequest(err))
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.errs.unauthorized(w, "Invalid email or password")
		return
	}
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Login successful", res)
}
