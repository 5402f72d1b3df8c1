package config

import "time"

// AsyncConfig configuración del pool de goroutines.
// Nota: solo se usa para ejecutar tareas asíncronas de mejor esfuerzo
// (notificaciones, auditoría, reconstrucción de cache); no hace scheduling.
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize"`                 // capacidad del pool
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks"` // tareas bloqueadas máximas (0 = sin límite)
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration"`     // expiración de workers ociosos
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking"`           // envío no bloqueante
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout"`     // espera de liberación ordenada
}

// DefaultAsyncConfig devuelve la configuración por defecto para desarrollo local.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         256,
		MaxBlockingTasks: 0,
		ExpiryDuration:   10 * time.Second,
		Nonblocking:      false,
		ReleaseTimeout:   5 * time.Second,
	}
}
