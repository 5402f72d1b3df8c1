package model

import "time"

// Estados de entrega de un mensaje. La progresión es estrictamente hacia
// adelante: enviado -> entregado -> visto. Nunca retrocede.
const (
	EstadoEnviado   = "enviado"
	EstadoEntregado = "entregado"
	EstadoVisto     = "visto"
)

// RangoEstado devuelve el orden del estado dentro de la progresión.
// Estados desconocidos quedan en -1 para que nunca ganen una comparación.
func RangoEstado(estado string) int {
	switch estado {
	case EstadoEnviado:
		return 0
	case EstadoEntregado:
		return 1
	case EstadoVisto:
		return 2
	default:
		return -1
	}
}

// Mensaje fila de la tabla mensajes.
// AnuncioID en NULL significa conversación general entre dos usuarios; con valor,
// la conversación queda acotada a ese anuncio del marketplace.
// Contenido se persiste ya escapado (entidades HTML), nunca el texto crudo.
// La columna estado solo existe en esquemas nuevos; instalaciones antiguas usan
// únicamente el booleano leido. El repositorio decide qué columna tocar según
// las capacidades resueltas en el arranque.
type Mensaje struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement;comment:id autoincremental" json:"id"`
	RemitenteID    int64      `gorm:"column:remitente_id;not null;index:idx_remitente_destinatario;comment:usuario que envía" json:"remitente_id"`
	DestinatarioID int64      `gorm:"column:destinatario_id;not null;index:idx_remitente_destinatario;index:idx_destinatario_estado;comment:usuario que recibe" json:"destinatario_id"`
	AnuncioID      *int64     `gorm:"column:anuncio_id;index;comment:anuncio que acota la conversación (NULL = chat general)" json:"anuncio_id"`
	Contenido      string     `gorm:"column:contenido;type:varchar(2000);not null;comment:texto escapado" json:"contenido"`
	Estado         string     `gorm:"column:estado;type:enum('enviado','entregado','visto');default:'enviado';index:idx_destinatario_estado;comment:estado de entrega" json:"estado,omitempty"`
	Leido          bool       `gorm:"column:leido;not null;default:0;comment:bandera de leído (esquema antiguo)" json:"leido"`
	FechaEnvio     time.Time  `gorm:"column:fecha_envio;autoCreateTime;index;comment:momento de creación" json:"fecha_envio"`

	// Campos denormalizados para presentación; se llenan con JOIN a usuarios,
	// no son columnas de esta tabla.
	RemitenteNombre    string `gorm:"->;-:migration;column:remitente_nombre" json:"remitente_nombre,omitempty"`
	DestinatarioNombre string `gorm:"->;-:migration;column:destinatario_nombre" json:"destinatario_nombre,omitempty"`
}

func (Mensaje) TableName() string { return "mensajes" }
