package auth

import (
	"time"

	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenService emite y verifica tokens de sesión. No guarda estado: el secreto se
// carga una vez al arrancar y rotarlo invalida todos los tokens emitidos.
type TokenService struct {
	cfg JWTConfig
	now func() time.Time
}

// NewTokenService construye el servicio de tokens.
func NewTokenService(cfg JWTConfig) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

// WithClock reemplaza el reloj usado al emitir (tests).
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue firma un token con el userID y el username, válido por ExpMinutes.
func (s *TokenService) Issue(userID, username string) (string, error) {
	return jwt.GenerateAt(s.cfg.Secret, userID, username, s.cfg.Issuer, s.cfg.ExpMinutes, s.now())
}

// Verify valida firma y expiración y devuelve el userID.
// Cualquier fallo se reporta como domain.ErrUnauthorized, sin distinguir expirado de malformado.
func (s *TokenService) Verify(token string) (string, error) {
	userID, _, err := jwt.Parse(s.cfg.Secret, token)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
