package util

import (
	"errors"
	"sync"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims conjunto de claims que consume este servicio. La emisión la hace el
// subsistema de identidad; aquí solo se valida firma/expiración y se leen
// sujeto, rol y email.
type Claims struct {
	UsuarioID int64  `json:"usuario_id"`
	Rol       string `json:"rol"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

var (
	jwtCfg   = config.DefaultJWTConfig()
	jwtCfgMu sync.RWMutex
)

// InitJWT fija la configuración de tokens (llamar en el arranque).
func InitJWT(cfg config.JWTConfig) {
	jwtCfgMu.Lock()
	defer jwtCfgMu.Unlock()
	jwtCfg = cfg
}

func currentJWTConfig() config.JWTConfig {
	jwtCfgMu.RLock()
	defer jwtCfgMu.RUnlock()
	return jwtCfg
}

// ErrFirmaInvalida método de firma inesperado en el token.
var ErrFirmaInvalida = errors.New("método de firma inesperado")

// GenerateToken emite un token firmado con el secreto compartido.
// Lo usan las pruebas y las herramientas de operación; el flujo de login real
// vive en el subsistema de identidad.
func GenerateToken(usuarioID int64, rol, email string) (string, error) {
	cfg := currentJWTConfig()
	now := time.Now()
	claims := Claims{
		UsuarioID: usuarioID,
		Rol:       rol,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessExpires)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// GenerateTokenConExpiracion emite un token con vigencia explícita.
// Útil para probar los caminos de expiración.
func GenerateTokenConExpiracion(usuarioID int64, rol, email string, vigencia time.Duration) (string, error) {
	cfg := currentJWTConfig()
	now := time.Now()
	claims := Claims{
		UsuarioID: usuarioID,
		Rol:       rol,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(vigencia)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken valida firma y expiración y devuelve los claims.
func ParseToken(tokenString string) (*Claims, error) {
	cfg := currentJWTConfig()
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrFirmaInvalida
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// DecodeExp decodifica el claim exp SIN validar la firma. Lo usa el monitor de
// sesión del lado cliente, que solo necesita saber cuándo vence un token que el
// servidor ya validó.
func DecodeExp(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	var claims Claims
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return claims.ExpiresAt.Time, nil
}
