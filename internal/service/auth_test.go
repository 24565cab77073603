package service_test

import (
	"context"
	"testing"
	"time"

	"nfccard-backend/internal/security"
	"nfccard-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	svc := service.NewAuthService("Admin@NFCCard.in", string(hash), tokens)

	t.Run("Success", func(t *testing.T) {
		res, err := svc.Login(ctx, " admin@nfccard.in ", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "admin@nfccard.in", res.Email)

		claims, err := tokens.ValidateToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, security.RoleAdmin, claims.Role)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin@nfccard.in", "guess")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Wrong Email", func(t *testing.T) {
		_, err := svc.Login(ctx, "other@nfccard.in", "s3cret-pass")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}
