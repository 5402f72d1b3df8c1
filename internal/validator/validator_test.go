package validator

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var validadorLoggerOnce sync.Once

func initValidadorTestLogger() {
	validadorLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// auditorEspia cuenta los eventos registrados para verificar el efecto de
// auditoría de cada rechazo.
type auditorEspia struct {
	mu      sync.Mutex
	eventos []audit.Evento
}

func (a *auditorEspia) Registrar(_ context.Context, evento audit.Evento) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventos = append(a.eventos, evento)
}

func codigoDe(t *testing.T, err error) string {
	t.Helper()
	var ev *ErrorValidacion
	require.ErrorAs(t, err, &ev)
	return ev.Codigo
}

func TestValidarContenidoValido(t *testing.T) {
	initValidadorTestLogger()
	v := NewValidador(nil)

	escapado, err := v.Validar(context.Background(), "Hola, ¿está disponible la habitación?", 7)
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿está disponible la habitación?", escapado)
}

func TestValidarEscapaHTML(t *testing.T) {
	initValidadorTestLogger()
	v := NewValidador(nil)

	escapado, err := v.Validar(context.Background(), "Precio <100 & negociable", 7)
	require.NoError(t, err)
	assert.Equal(t, "Precio &lt;100 &amp; negociable", escapado)
}

func TestValidarRechazos(t *testing.T) {
	initValidadorTestLogger()
	v := NewValidador(nil)
	ctx := context.Background()

	t.Run("vacio", func(t *testing.T) {
		_, err := v.Validar(ctx, "   ", 7)
		assert.Equal(t, consts.ValContenidoVacio, codigoDe(t, err))
	})

	t.Run("demasiado_largo", func(t *testing.T) {
		_, err := v.Validar(ctx, strings.Repeat("ab", 1001), 7)
		assert.Equal(t, consts.ValContenidoLargo, codigoDe(t, err))
	})

	t.Run("demasiado_corto", func(t *testing.T) {
		// un solo carácter tras recortar: lo rechaza el chequeo de corto,
		// no el de vacío
		_, err := v.Validar(ctx, " a ", 7)
		assert.Equal(t, consts.ValContenidoCorto, codigoDe(t, err))
	})

	t.Run("script", func(t *testing.T) {
		_, err := v.Validar(ctx, "<script>alert(1)</script>", 7)
		assert.Equal(t, consts.ValPatronProhibido, codigoDe(t, err))
	})

	t.Run("javascript_uri", func(t *testing.T) {
		_, err := v.Validar(ctx, "mira esto javascript:alert(1)", 7)
		assert.Equal(t, consts.ValPatronProhibido, codigoDe(t, err))
	})

	t.Run("acortador_url", func(t *testing.T) {
		_, err := v.Validar(ctx, "entra a bit.ly/x123 ahora", 7)
		assert.Equal(t, consts.ValPatronProhibido, codigoDe(t, err))
	})

	t.Run("inyeccion_sql", func(t *testing.T) {
		_, err := v.Validar(ctx, "nada' union select * from usuarios", 7)
		assert.Equal(t, consts.ValPatronProhibido, codigoDe(t, err))
	})

	t.Run("groseria", func(t *testing.T) {
		_, err := v.Validar(ctx, "eres un idiota", 7)
		assert.Equal(t, consts.ValLenguajeOfensivo, codigoDe(t, err))
	})

	t.Run("groseria_por_subcadena", func(t *testing.T) {
		// la coincidencia por subcadena da falso positivo con palabras
		// inocentes que contienen una grosería; comportamiento vigente
		_, err := v.Validar(ctx, "disputaron el partido ayer", 7)
		assert.Equal(t, consts.ValLenguajeOfensivo, codigoDe(t, err))
	})

	t.Run("repeticion_gana_a_mayusculas", func(t *testing.T) {
		// 13 letras mayúsculas idénticas: se reporta como repetición
		// excesiva, no como exceso de mayúsculas
		_, err := v.Validar(ctx, "AAAAAAAAAAAAA", 7)
		assert.Equal(t, consts.ValRepeticionExcesiva, codigoDe(t, err))
	})

	t.Run("exceso_mayusculas", func(t *testing.T) {
		_, err := v.Validar(ctx, "HOLA QUE TAL AMIGO MIO", 7)
		assert.Equal(t, consts.ValExcesoMayusculas, codigoDe(t, err))
	})

	t.Run("solo_emojis", func(t *testing.T) {
		_, err := v.Validar(ctx, "😀😀😀😀😀😀", 7)
		assert.Equal(t, consts.ValSoloEmojis, codigoDe(t, err))
	})

	t.Run("pocos_emojis_pasan", func(t *testing.T) {
		// hasta 5 caracteres de emojis el mensaje se permite
		_, err := v.Validar(ctx, "👍👍👍", 7)
		assert.NoError(t, err)
	})
}

func TestValidarDeterminista(t *testing.T) {
	initValidadorTestLogger()
	v := NewValidador(nil)
	ctx := context.Background()

	entrada := "Hola, <b>bienvenido</b> & gracias"
	primera, err1 := v.Validar(ctx, entrada, 7)
	segunda, err2 := v.Validar(ctx, entrada, 7)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, primera, segunda)
}

func TestValidarAuditaRechazos(t *testing.T) {
	initValidadorTestLogger()
	espia := &auditorEspia{}
	v := NewValidador(espia)

	_, err := v.Validar(context.Background(), "<script>x</script>", 42)
	require.Error(t, err)

	require.Len(t, espia.eventos, 1)
	evento := espia.eventos[0]
	assert.Equal(t, int64(42), evento.ActorID)
	assert.Equal(t, audit.ResultadoRechazado, evento.Resultado)
	assert.Equal(t, consts.ValPatronProhibido, evento.Detalle)
}
