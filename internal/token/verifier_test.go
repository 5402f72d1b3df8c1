package token

import (
	"bytes"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	util.InitJWT(config.DefaultJWTConfig())
}

func nuevoVerifier(t *testing.T, policy config.PolicyConfig) *Verifier {
	t.Helper()
	v, err := NewVerifier(config.DefaultJWTConfig(), policy)
	require.NoError(t, err)
	return v
}

func contextoConPeticion(method, target, contentType string, body []byte) (*gin.Context, []byte) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, body
}

func TestExtraerTokenPrioridad(t *testing.T) {
	v := nuevoVerifier(t, config.DefaultPolicyConfig())

	t.Run("cabecera_gana_a_query", func(t *testing.T) {
		c, raw := contextoConPeticion("POST", "/api/mensajes?token=del-query", "application/json", []byte(`{"token":"del-cuerpo"}`))
		c.Request.Header.Set("Authorization", "Bearer de-cabecera")

		tok, ok := v.ExtraerToken(c, raw)
		require.True(t, ok)
		assert.Equal(t, "de-cabecera", tok)
	})

	t.Run("cabecera_case_insensitive", func(t *testing.T) {
		c, raw := contextoConPeticion("POST", "/api/mensajes", "", nil)
		c.Request.Header.Set("Authorization", "bearer minusculas")

		tok, ok := v.ExtraerToken(c, raw)
		require.True(t, ok)
		assert.Equal(t, "minusculas", tok)
	})

	t.Run("query_gana_a_cuerpo", func(t *testing.T) {
		c, raw := contextoConPeticion("POST", "/api/mensajes?token=del-query", "application/json", []byte(`{"token":"del-cuerpo"}`))

		tok, ok := v.ExtraerToken(c, raw)
		require.True(t, ok)
		assert.Equal(t, "del-query", tok)
	})

	t.Run("cuerpo_json", func(t *testing.T) {
		c, raw := contextoConPeticion("POST", "/api/mensajes", "application/json", []byte(`{"token":"del-cuerpo"}`))

		tok, ok := v.ExtraerToken(c, raw)
		require.True(t, ok)
		assert.Equal(t, "del-cuerpo", tok)
	})

	t.Run("formulario", func(t *testing.T) {
		form := url.Values{"token": {"del-formulario"}}
		c, _ := contextoConPeticion("POST", "/api/mensajes", "application/x-www-form-urlencoded", []byte(form.Encode()))

		tok, ok := v.ExtraerToken(c, nil)
		require.True(t, ok)
		assert.Equal(t, "del-formulario", tok)
	})

	t.Run("sin_token", func(t *testing.T) {
		c, raw := contextoConPeticion("POST", "/api/mensajes", "application/json", []byte(`{"accion":"enviar"}`))

		_, ok := v.ExtraerToken(c, raw)
		assert.False(t, ok)
	})
}

func TestVerificar(t *testing.T) {
	v := nuevoVerifier(t, config.DefaultPolicyConfig())

	t.Run("token_valido", func(t *testing.T) {
		tok, err := util.GenerateToken(15, "viajero", "v@example.com")
		require.NoError(t, err)

		claims, err := v.Verificar(tok)
		require.NoError(t, err)
		assert.Equal(t, int64(15), claims.UsuarioID)
		assert.Equal(t, "viajero", claims.Rol)
	})

	t.Run("cache_revalida_expiracion", func(t *testing.T) {
		tok, err := util.GenerateTokenConExpiracion(16, "viajero", "v@example.com", 150*time.Millisecond)
		require.NoError(t, err)

		_, err = v.Verificar(tok)
		require.NoError(t, err)

		// la entrada sigue en cache, pero ya venció: debe rechazarse
		time.Sleep(250 * time.Millisecond)
		_, err = v.Verificar(tok)
		assert.ErrorIs(t, err, ErrTokenInvalido)
	})

	t.Run("token_expirado", func(t *testing.T) {
		tok, err := util.GenerateTokenConExpiracion(17, "viajero", "v@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = v.Verificar(tok)
		assert.ErrorIs(t, err, ErrTokenInvalido)
	})

	t.Run("firma_ajena", func(t *testing.T) {
		tok, err := util.GenerateToken(18, "viajero", "v@example.com")
		require.NoError(t, err)
		manipulado := tok[:strings.LastIndex(tok, ".")+1] + "firmafalsa"

		_, err = v.Verificar(manipulado)
		assert.ErrorIs(t, err, ErrTokenInvalido)
	})

	t.Run("vacio", func(t *testing.T) {
		_, err := v.Verificar("")
		assert.ErrorIs(t, err, ErrSinToken)
	})
}

func TestRequiereAuth(t *testing.T) {
	t.Run("politica_observada", func(t *testing.T) {
		v := nuevoVerifier(t, config.PolicyConfig{ConversationReadRequiresAuth: false})

		assert.False(t, v.RequiereAuth(consts.AccionObtenerConversacion))
		assert.True(t, v.RequiereAuth(consts.AccionEnviar))
		assert.True(t, v.RequiereAuth(consts.AccionObtenerChats))
		assert.True(t, v.RequiereAuth(consts.AccionMarcarVisto))
	})

	t.Run("politica_invertida", func(t *testing.T) {
		v := nuevoVerifier(t, config.PolicyConfig{ConversationReadRequiresAuth: true})

		assert.True(t, v.RequiereAuth(consts.AccionObtenerConversacion))
	})

	t.Run("accion_desconocida_exige_token", func(t *testing.T) {
		v := nuevoVerifier(t, config.DefaultPolicyConfig())

		assert.True(t, v.RequiereAuth("accion_inventada"))
	})
}
