package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	rediskey "github.com/BryanHuaPer/viajeros-peru-sub002/consts/redisKey"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// bloqueoRepositoryImpl capa de acceso a datos de bloqueos entre usuarios.
type bloqueoRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewBloqueoRepository crea el repositorio de bloqueos.
func NewBloqueoRepository(db *gorm.DB, redisClient *redis.Client) IBloqueoRepository {
	return &bloqueoRepositoryImpl{db: db, redisClient: redisClient}
}

// ExisteEntre indica si hay bloqueo en cualquier dirección entre dos usuarios.
// Cache-aside: el par normalizado se cachea con TTL, y la ausencia de bloqueo
// se cachea con un marcador para no martillar la base de datos.
func (r *bloqueoRepositoryImpl) ExisteEntre(ctx context.Context, usuarioA, usuarioB int64) (bool, error) {
	detalle, err := r.DetalleEntre(ctx, usuarioA, usuarioB)
	if err != nil {
		return false, err
	}
	return detalle.Bloqueado, nil
}

// DetalleEntre resuelve el bloqueo entre dos usuarios y, si existe, quién
// bloqueó a quién. Si ambos se bloquearon mutuamente se reporta la fila más
// antigua.
func (r *bloqueoRepositoryImpl) DetalleEntre(ctx context.Context, usuarioA, usuarioB int64) (DetalleBloqueo, error) {
	cacheKey := rediskey.BloqueoParKey(usuarioA, usuarioB)

	if r.redisClient != nil {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			return decodificarDetalle(cached), nil
		}
		if err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	var bloqueo model.Bloqueo
	err := r.db.WithContext(ctx).
		Where("(usuario_bloqueador_id = ? AND usuario_bloqueado_id = ?) OR (usuario_bloqueador_id = ? AND usuario_bloqueado_id = ?)",
			usuarioA, usuarioB, usuarioB, usuarioA).
		Order("id ASC").
		Take(&bloqueo).Error

	var detalle DetalleBloqueo
	switch {
	case err == nil:
		detalle = DetalleBloqueo{
			Bloqueado:           true,
			UsuarioBloqueadorID: bloqueo.UsuarioBloqueadorID,
			UsuarioBloqueadoID:  bloqueo.UsuarioBloqueadoID,
		}
	case errors.Is(WrapDBError(err), ErrRegistroNoEncontrado):
		detalle = DetalleBloqueo{Bloqueado: false}
	default:
		return DetalleBloqueo{}, WrapDBError(err)
	}

	r.cachearDetalle(ctx, cacheKey, detalle)
	return detalle, nil
}

// Crear registra un bloqueo dirigido. Un par ya bloqueado en esa dirección
// devuelve ErrClaveDuplicada por el índice único.
func (r *bloqueoRepositoryImpl) Crear(ctx context.Context, bloqueadorID, bloqueadoID int64) error {
	bloqueo := model.Bloqueo{UsuarioBloqueadorID: bloqueadorID, UsuarioBloqueadoID: bloqueadoID}
	if err := r.db.WithContext(ctx).Create(&bloqueo).Error; err != nil {
		return WrapDBError(err)
	}
	r.invalidarPar(ctx, bloqueadorID, bloqueadoID)
	return nil
}

// Eliminar quita el bloqueo dirigido bloqueador->bloqueado. Devuelve
// ErrRegistroNoEncontrado si esa dirección no estaba bloqueada.
func (r *bloqueoRepositoryImpl) Eliminar(ctx context.Context, bloqueadorID, bloqueadoID int64) error {
	res := r.db.WithContext(ctx).
		Where("usuario_bloqueador_id = ? AND usuario_bloqueado_id = ?", bloqueadorID, bloqueadoID).
		Delete(&model.Bloqueo{})
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRegistroNoEncontrado
	}
	r.invalidarPar(ctx, bloqueadorID, bloqueadoID)
	return nil
}

// cachearDetalle guarda el resultado en segundo plano. El detalle positivo se
// codifica como "bloqueador:bloqueado"; la ausencia usa el marcador vacío con
// TTL más corto.
func (r *bloqueoRepositoryImpl) cachearDetalle(ctx context.Context, cacheKey string, detalle DetalleBloqueo) {
	if r.redisClient == nil {
		return
	}
	valor := rediskey.MarcadorVacio
	ttl := rediskey.BloqueoVacioTTL
	if detalle.Bloqueado {
		valor = fmt.Sprintf("%d:%d", detalle.UsuarioBloqueadorID, detalle.UsuarioBloqueadoID)
		ttl = rediskey.BloqueoTTL
	}
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Set(runCtx, cacheKey, valor, ttl).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// invalidarPar borra la entrada cacheada del par en segundo plano.
func (r *bloqueoRepositoryImpl) invalidarPar(ctx context.Context, usuarioA, usuarioB int64) {
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.BloqueoParKey(usuarioA, usuarioB)
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Del(runCtx, cacheKey).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// decodificarDetalle reconstruye el detalle desde el valor cacheado.
func decodificarDetalle(cached string) DetalleBloqueo {
	if cached == rediskey.MarcadorVacio {
		return DetalleBloqueo{Bloqueado: false}
	}
	partes := strings.SplitN(cached, ":", 2)
	if len(partes) != 2 {
		return DetalleBloqueo{Bloqueado: true}
	}
	bloqueador, err1 := strconv.ParseInt(partes[0], 10, 64)
	bloqueado, err2 := strconv.ParseInt(partes[1], 10, 64)
	if err1 != nil || err2 != nil {
		return DetalleBloqueo{Bloqueado: true}
	}
	return DetalleBloqueo{Bloqueado: true, UsuarioBloqueadorID: bloqueador, UsuarioBloqueadoID: bloqueado}
}
