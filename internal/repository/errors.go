package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ==================== Errores unificados de la capa de repositorio ====================

var (
	// ErrRegistroNoEncontrado el registro no existe
	ErrRegistroNoEncontrado = errors.New("registro no encontrado")

	// ErrClaveDuplicada conflicto de índice único
	ErrClaveDuplicada = errors.New("clave duplicada")

	// ErrBaseDatos error de operación de base de datos
	ErrBaseDatos = errors.New("error de base de datos")

	// ErrRedisNil la key no existe en Redis
	ErrRedisNil = errors.New("redis: key no encontrada")

	// ErrRedis error de operación de Redis
	ErrRedis = errors.New("error de redis")
)

// ==================== Envoltura central ====================

// wrapError aplica reglas de mapeo fuente->destino; si ninguna coincide,
// envuelve el error por defecto conservando el original para los logs.
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	return fmt.Errorf("%w: %v", defaultErr, err)
}

// ==================== Reglas predefinidas ====================

var (
	// dbErrorRules reglas de mapeo de errores de base de datos
	dbErrorRules = map[error]error{
		gorm.ErrRecordNotFound: ErrRegistroNoEncontrado,
		gorm.ErrDuplicatedKey:  ErrClaveDuplicada,
	}

	// redisErrorRules reglas de mapeo de errores de Redis
	redisErrorRules = map[error]error{
		redis.Nil: ErrRedisNil,
	}
)

// ==================== Funciones de conveniencia ====================

// WrapDBError envuelve errores de base de datos.
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrBaseDatos)
}

// WrapRedisError envuelve errores de Redis.
func WrapRedisError(err error) error {
	return wrapError(err, redisErrorRules, ErrRedis)
}

// LogRedisError registra un error de Redis. El cache siempre degrada a la
// base de datos, así que estos errores nunca se propagan al llamador.
func LogRedisError(ctx context.Context, err error) {
	logger.Error(ctx, "error de operación Redis", logger.ErrorField("error", err))
}
