package rediskey

import (
	"fmt"
	"time"
)

// ==================== Constantes de TTL ====================

const (
	// BloqueoTTL cache del estado de bloqueo entre un par de usuarios
	BloqueoTTL = 24 * time.Hour
	// BloqueoVacioTTL cache de valor vacío (par sin bloqueo)
	BloqueoVacioTTL = 5 * time.Minute

	// NoLeidosTTL cache del total de mensajes no leídos por usuario
	NoLeidosTTL = 10 * time.Minute
)

// MarcadorVacio valor centinela para cachear "sin bloqueo" sin confundirlo
// con un miss de cache.
const MarcadorVacio = "__VACIO__"

// ==================== Constructores de keys ====================

// BloqueoParKey cache de bloqueo por par no ordenado: chat:bloqueo:{menor}:{mayor}
// Se normaliza el orden para que ambas direcciones compartan la misma entrada.
func BloqueoParKey(usuarioA, usuarioB int64) string {
	if usuarioA > usuarioB {
		usuarioA, usuarioB = usuarioB, usuarioA
	}
	return fmt.Sprintf("chat:bloqueo:%d:%d", usuarioA, usuarioB)
}

// NoLeidosKey total de no leídos por usuario: chat:noleidos:{usuario_id}
func NoLeidosKey(usuarioID int64) string {
	return fmt.Sprintf("chat:noleidos:%d", usuarioID)
}

// RateLimitIPKey limitador por IP: rate:limit:ip:{ip}
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
