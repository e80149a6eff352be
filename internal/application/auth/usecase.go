package auth

import (
	"fmt"

	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// DemoUser el único usuario de la aplicación, definido por configuración.
// No hay registro ni tabla de usuarios: la aplicación es monousuario.
type DemoUser struct {
	Email    string
	Password string
	Name     string
}

// AuthUseCase caso de uso de autenticación: login contra el usuario demo.
type AuthUseCase struct {
	email        string
	name         string
	passwordHash []byte
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso. La contraseña en claro de la
// configuración se hashea aquí una sola vez; en memoria solo vive el hash.
func NewAuthUseCase(user DemoUser, jwtCfg JWTConfig) (*AuthUseCase, error) {
	if user.Email == "" || user.Password == "" {
		return nil, fmt.Errorf("auth: usuario demo sin email o contraseña")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hashear contraseña: %w", err)
	}
	return &AuthUseCase{
		email:        user.Email,
		name:         user.Name,
		passwordHash: hash,
		jwtCfg:       jwtCfg,
	}, nil
}

// Login verifica email/password contra el usuario demo, genera JWT y retorna
// token + datos básicos. Credenciales incorrectas devuelven siempre el mismo
// error, sin distinguir email de contraseña.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Email != uc.email {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.email, uc.email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Email: uc.email,
		Name:  uc.name,
	}, nil
}
