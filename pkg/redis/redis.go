package redis

import (
	"context"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"

	"github.com/redis/go-redis/v9"
)

var global *redis.Client

// C devuelve el cliente global (nil si no se inicializó o si Redis está caído
// y el arranque decidió degradar).
func C() *redis.Client {
	return global
}

// ReplaceGlobal fija el cliente global (llamar una vez en el arranque).
func ReplaceGlobal(client *redis.Client) {
	global = client
}

// Build crea y verifica un cliente Redis según la configuración.
// Hace un ping con timeout corto: si Redis no responde, el llamador decide si
// degradar (cache/limitador apagados) o abortar.
func Build(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
