package repository

import (
	"errors"
	"testing"

	rediskey "github.com/BryanHuaPer/viajeros-peru-sub002/consts/redisKey"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestEstadoEfectivo(t *testing.T) {
	conEstado := Capacidades{TieneEstado: true}
	sinEstado := Capacidades{TieneEstado: false}

	assert.Equal(t, "entregado", conEstado.EstadoEfectivo(model.Mensaje{Estado: "entregado"}))
	assert.Equal(t, "visto", conEstado.EstadoEfectivo(model.Mensaje{Estado: "visto", Leido: false}))

	// el esquema antiguo solo distingue leído de no leído
	assert.Equal(t, model.EstadoVisto, sinEstado.EstadoEfectivo(model.Mensaje{Leido: true}))
	assert.Equal(t, model.EstadoEnviado, sinEstado.EstadoEfectivo(model.Mensaje{Estado: "entregado", Leido: false}))
}

func TestClavePar(t *testing.T) {
	anuncio := int64(88)
	assert.Equal(t, "5:general", clavePar(5, nil))
	assert.Equal(t, "5:88", clavePar(5, &anuncio))
}

func TestDecodificarDetalle(t *testing.T) {
	t.Run("marcador_vacio", func(t *testing.T) {
		detalle := decodificarDetalle(rediskey.MarcadorVacio)
		assert.False(t, detalle.Bloqueado)
	})

	t.Run("par_dirigido", func(t *testing.T) {
		detalle := decodificarDetalle("7:3")
		assert.True(t, detalle.Bloqueado)
		assert.Equal(t, int64(7), detalle.UsuarioBloqueadorID)
		assert.Equal(t, int64(3), detalle.UsuarioBloqueadoID)
	})

	t.Run("valor_corrupto_conserva_el_bloqueo", func(t *testing.T) {
		// ante una entrada ilegible se mantiene el hecho del bloqueo aunque
		// se pierda la dirección
		detalle := decodificarDetalle("basura")
		assert.True(t, detalle.Bloqueado)
		assert.Zero(t, detalle.UsuarioBloqueadorID)
	})
}

func TestBloqueoParKeyNormalizaElOrden(t *testing.T) {
	assert.Equal(t, rediskey.BloqueoParKey(2, 9), rediskey.BloqueoParKey(9, 2))
}

func TestWrapDBError(t *testing.T) {
	assert.True(t, errors.Is(WrapDBError(gorm.ErrRecordNotFound), ErrRegistroNoEncontrado))
	assert.True(t, errors.Is(WrapDBError(gorm.ErrDuplicatedKey), ErrClaveDuplicada))
	assert.NoError(t, WrapDBError(nil))

	otro := errors.New("conexión rechazada")
	assert.False(t, errors.Is(WrapDBError(otro), ErrRegistroNoEncontrado))
}
