package config

import "time"

// ServerConfig configuración del servidor HTTP.
type ServerConfig struct {
	Host           string        `json:"host" yaml:"host"`                     // dirección de escucha
	Port           int           `json:"port" yaml:"port"`                     // puerto de escucha
	ReadTimeout    time.Duration `json:"readTimeout" yaml:"readTimeout"`       // timeout de lectura
	WriteTimeout   time.Duration `json:"writeTimeout" yaml:"writeTimeout"`     // timeout de escritura
	MaxHeaderBytes int           `json:"maxHeaderBytes" yaml:"maxHeaderBytes"` // tamaño máximo de cabeceras
}

// DefaultServerConfig devuelve la configuración por defecto para desarrollo local.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "127.0.0.1",
		Port:           8080,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

// LoggerConfig configuración del logger zap.
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level"`                       // debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding"`                 // json o console
	EnableColor      bool     `json:"enableColor" yaml:"enableColor"`           // colores en modo console
	Development      bool     `json:"development" yaml:"development"`           // modo desarrollo (stacktraces)
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths"`           // destinos de salida
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths"` // destinos de errores
}

// DefaultLoggerConfig devuelve la configuración por defecto para desarrollo local.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:       "info",
		Encoding:    "json",
		Development: false,
	}
}

// DatabaseConfig configuración de MySQL.
// Replicas permite enrutar lecturas a réplicas vía dbresolver; vacío = sin réplicas.
type DatabaseConfig struct {
	DSN             string        `json:"dsn" yaml:"dsn"`                         // DSN principal (escritura)
	Replicas        []string      `json:"replicas" yaml:"replicas"`               // DSN de réplicas de lectura
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`       // conexiones abiertas máximas
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`       // conexiones ociosas máximas
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"` // vida máxima de conexión
}

// DefaultDatabaseConfig devuelve la configuración por defecto para desarrollo local.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		DSN:             "viajeros:viajeros@tcp(127.0.0.1:3306)/viajeros_peru?charset=utf8mb4&parseTime=True&loc=Local",
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// RedisConfig configuración del cliente Redis.
type RedisConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`                 // host:puerto
	Password     string        `json:"password" yaml:"password"`         // contraseña (vacía en local)
	DB           int           `json:"db" yaml:"db"`                     // número de base
	DialTimeout  time.Duration `json:"dialTimeout" yaml:"dialTimeout"`   // timeout de conexión
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`   // timeout de lectura
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"` // timeout de escritura
	PoolSize     int           `json:"poolSize" yaml:"poolSize"`         // tamaño del pool
}

// DefaultRedisConfig devuelve la configuración por defecto para desarrollo local.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "127.0.0.1:6379",
		DB:           0,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		PoolSize:     20,
	}
}

// JWTConfig configuración de validación de tokens.
// La emisión de tokens es responsabilidad del servicio de identidad; aquí solo
// se valida firma y expiración con el mismo secreto compartido.
type JWTConfig struct {
	Secret        string        `json:"secret" yaml:"secret"`               // secreto HMAC compartido
	Issuer        string        `json:"issuer" yaml:"issuer"`               // emisor esperado
	AccessExpires time.Duration `json:"accessExpires" yaml:"accessExpires"` // vigencia al emitir (solo utilidades)
	CacheSize     int           `json:"cacheSize" yaml:"cacheSize"`         // tamaño del cache LRU token->claims
}

// DefaultJWTConfig devuelve la configuración por defecto para desarrollo local.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:        "viajeros-peru-secreto-dev",
		Issuer:        "viajeros-peru",
		AccessExpires: 2 * time.Hour,
		CacheSize:     1024,
	}
}

// SchemaConfig capacidades del esquema relacional.
// TieneEstado indica si la tabla mensajes tiene la columna `estado`
// (enviado/entregado/visto). Instalaciones antiguas solo tienen el booleano
// `leido`. Se resuelve una sola vez en el arranque; nunca se sondea por petición.
type SchemaConfig struct {
	TieneEstado bool `json:"tieneEstado" yaml:"tieneEstado"`
}

// DefaultSchemaConfig devuelve la configuración del esquema actual.
func DefaultSchemaConfig() SchemaConfig {
	return SchemaConfig{TieneEstado: true}
}

// PolicyConfig decisiones de política explícitas.
type PolicyConfig struct {
	// ConversationReadRequiresAuth controla si obtener_conversacion exige token.
	// El comportamiento observado del sistema original es lectura pública (false).
	// Se mantiene como decisión nombrada para poder invertirla conscientemente.
	ConversationReadRequiresAuth bool `json:"conversationReadRequiresAuth" yaml:"conversationReadRequiresAuth"`
}

// DefaultPolicyConfig devuelve la política observada en el sistema original.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{ConversationReadRequiresAuth: false}
}

// SessionConfig parámetros del monitor de sesión del lado cliente.
type SessionConfig struct {
	InactividadMax     time.Duration `json:"inactividadMax" yaml:"inactividadMax"`         // inactividad máxima antes de cerrar sesión
	AvisoInactividad   time.Duration `json:"avisoInactividad" yaml:"avisoInactividad"`     // antelación del aviso de inactividad
	UmbralExpiracion   time.Duration `json:"umbralExpiracion" yaml:"umbralExpiracion"`     // umbral de expiración del token para el modal
	CuentaRegresiva    time.Duration `json:"cuentaRegresiva" yaml:"cuentaRegresiva"`       // duración de la cuenta regresiva del modal
	IntervaloMuestreo  time.Duration `json:"intervaloMuestreo" yaml:"intervaloMuestreo"`   // granularidad de los temporizadores
	RutaAlmacenamiento string        `json:"rutaAlmacenamiento" yaml:"rutaAlmacenamiento"` // archivo de persistencia de última actividad
}

// DefaultSessionConfig devuelve la configuración por defecto del monitor.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		InactividadMax:    30 * time.Minute,
		AvisoInactividad:  5 * time.Minute,
		UmbralExpiracion:  10 * time.Minute,
		CuentaRegresiva:   10 * time.Second,
		IntervaloMuestreo: time.Second,
	}
}

// RateLimitConfig configuración del limitador de peticiones por IP.
type RateLimitConfig struct {
	Rate  float64 `json:"rate" yaml:"rate"`   // tokens generados por segundo
	Burst int     `json:"burst" yaml:"burst"` // capacidad del bucket
}

// DefaultRateLimitConfig devuelve la configuración por defecto.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Rate: 10.0, Burst: 20}
}

// MailConfig configuración del correo de notificaciones a administradores.
type MailConfig struct {
	Host     string `json:"host" yaml:"host"`         // servidor SMTP
	Port     int    `json:"port" yaml:"port"`         // puerto SMTP
	Username string `json:"username" yaml:"username"` // usuario SMTP
	Password string `json:"password" yaml:"password"` // contraseña SMTP
	From     string `json:"from" yaml:"from"`         // remitente
	Enabled  bool   `json:"enabled" yaml:"enabled"`   // deshabilitado = impl nop
}

// DefaultMailConfig devuelve la configuración por defecto (deshabilitado en local).
func DefaultMailConfig() MailConfig {
	return MailConfig{
		Host: "localhost",
		Port: 587,
		From: "no-responder@viajerosperu.pe",
	}
}

// KafkaConfig configuración del publicador de eventos de auditoría.
type KafkaConfig struct {
	Brokers      []string      `json:"brokers" yaml:"brokers"`           // lista de brokers
	Topic        string        `json:"topic" yaml:"topic"`               // topic de auditoría
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"` // timeout de publicación
	Enabled      bool          `json:"enabled" yaml:"enabled"`           // deshabilitado = solo log
}

// DefaultKafkaConfig devuelve la configuración por defecto (deshabilitado en local).
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:      []string{"127.0.0.1:9092"},
		Topic:        "viajeros.auditoria",
		WriteTimeout: 3 * time.Second,
	}
}
