package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/pkg/jwt"
)

func newTestAuth(t *testing.T) *AuthUseCase {
	t.Helper()
	uc, err := NewAuthUseCase(
		DemoUser{Email: "demo@example.com", Password: "secreto123", Name: "Demo"},
		JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "factura-simple-test"},
	)
	require.NoError(t, err)
	return uc
}

func TestLogin_CredencialesCorrectas(t *testing.T) {
	uc := newTestAuth(t)

	resp, err := uc.Login(dto.LoginRequest{Email: "demo@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", resp.Email)
	assert.Equal(t, "Demo", resp.Name)

	// El token debe ser verificable con el mismo secret.
	userID, email, err := jwt.Parse("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", userID)
	assert.Equal(t, "demo@example.com", email)
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	uc := newTestAuth(t)

	// Email y contraseña incorrectos devuelven el mismo error.
	_, err := uc.Login(dto.LoginRequest{Email: "otro@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(dto.LoginRequest{Email: "demo@example.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewAuthUseCase_ConfiguracionIncompleta(t *testing.T) {
	_, err := NewAuthUseCase(DemoUser{Email: "", Password: ""}, JWTConfig{})
	assert.Error(t, err)
}
