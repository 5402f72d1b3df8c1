package token

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrSinToken no se encontró credencial en ninguna de las cuatro ubicaciones.
	ErrSinToken = errors.New("token no proporcionado")
	// ErrTokenInvalido la credencial no pasó la validación de firma/expiración.
	ErrTokenInvalido = errors.New("token inválido o expirado")
)

// Verifier valida credenciales bearer y resuelve la política de autenticación
// por acción. Es puro (lectura + validación): los eventos de auditoría por
// consulta de token se registran en el punto de llamada, no aquí.
type Verifier struct {
	cache  *lru.Cache[string, *util.Claims]
	policy config.PolicyConfig
}

// NewVerifier crea el verificador con su cache LRU token->claims.
// El cache evita repetir la verificación de firma en ráfagas del mismo
// cliente; las entradas se revalidan contra exp antes de reutilizarse.
func NewVerifier(jwtCfg config.JWTConfig, policy config.PolicyConfig) (*Verifier, error) {
	size := jwtCfg.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *util.Claims](size)
	if err != nil {
		return nil, err
	}
	return &Verifier{cache: cache, policy: policy}, nil
}

// ExtraerToken busca la credencial en orden de prioridad:
// 1. cabecera Authorization: Bearer <token>
// 2. parámetro de query `token`
// 3. campo `token` del cuerpo JSON (rawBody ya leído por el dispatcher)
// 4. campo `token` de formulario
// Devuelve false si no hay credencial en ninguna ubicación.
func (v *Verifier) ExtraerToken(c *gin.Context, rawBody []byte) (string, bool) {
	// 1. Cabecera Authorization (la clave es case-insensitive en HTTP)
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], true
		}
	}

	// 2. Query string
	if tok := c.Query("token"); tok != "" {
		return tok, true
	}

	// 3. Campo token del cuerpo JSON
	if len(rawBody) > 0 {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rawBody, &body); err == nil && body.Token != "" {
			return body.Token, true
		}
	}

	// 4. Campo token de formulario
	if tok := c.PostForm("token"); tok != "" {
		return tok, true
	}

	return "", false
}

// Verificar valida la credencial y devuelve la identidad autenticada.
func (v *Verifier) Verificar(tokenString string) (*util.Claims, error) {
	if tokenString == "" {
		return nil, ErrSinToken
	}

	if claims, ok := v.cache.Get(tokenString); ok {
		// entrada cacheada: revalidar expiración antes de reutilizar
		if claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now()) {
			return claims, nil
		}
		v.cache.Remove(tokenString)
		return nil, ErrTokenInvalido
	}

	claims, err := util.ParseToken(tokenString)
	if err != nil {
		return nil, ErrTokenInvalido
	}
	v.cache.Add(tokenString, claims)
	return claims, nil
}

// Autenticar combina extracción y verificación para una petición.
func (v *Verifier) Autenticar(c *gin.Context, rawBody []byte) (*util.Claims, error) {
	tokenString, ok := v.ExtraerToken(c, rawBody)
	if !ok {
		return nil, ErrSinToken
	}
	return v.Verificar(tokenString)
}

// RequiereAuth resuelve la política de autenticación por acción.
// obtener_conversacion es pública en el diseño observado (decisión nombrada en
// config.PolicyConfig, no un hueco accidental silencioso); cualquier acción
// desconocida exige token por defecto.
func (v *Verifier) RequiereAuth(accion string) bool {
	switch accion {
	case consts.AccionObtenerConversacion:
		return v.policy.ConversationReadRequiresAuth
	case consts.AccionEnviar,
		consts.AccionObtenerChats,
		consts.AccionMarcarLeidos,
		consts.AccionObtenerNoLeidos,
		consts.AccionVerificarBloqueo,
		consts.AccionBloquearUsuario,
		consts.AccionDesbloquearUsuario,
		consts.AccionReportarMensaje,
		consts.AccionObtenerEstadoMensaje,
		consts.AccionMarcarVisto,
		consts.AccionMarcarConversacionVista,
		consts.AccionObtenerEstadosMensajes:
		return true
	default:
		// acción desconocida: exigir autenticación
		return true
	}
}
