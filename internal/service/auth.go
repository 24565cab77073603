package service

import (
	"context"
	"errors"
	"strings"

	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	adminEmail   string
	passwordHash []byte
	tokens       security.TokenManager
}

// NewAuthService authenticates the single configured administrator.
func NewAuthService(adminEmail, passwordHash string, tokens security.TokenManager) AuthService {
	return &authService{
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// Always run bcrypt so an unknown email costs the same as a wrong password.
	hashErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if email != s.adminEmail || hashErr != nil {
		logger.WarnContext(ctx, "Admin login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAdminToken(email)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Admin logged in", "email", email)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Email: email}, nil
}
