package model

import "time"

// Estados de un reporte. Solo la creación ocurre en este servicio; los cambios
// de estado los hace el panel de administración.
const (
	ReporteEstadoPendiente = "pendiente"
	ReporteEstadoRevisado  = "revisado"
	ReporteEstadoResuelto  = "resuelto"
)

// ReporteTipoMensaje tipo de reporte originado en mensajería.
const ReporteTipoMensaje = "mensaje"

// Reporte denuncia de abuso contra un mensaje.
// ReportadoID siempre es el otro participante de la conversación respecto al
// reportador. Motivo guarda un payload JSON con el texto libre del denunciante
// más una instantánea de los últimos 5 mensajes al momento del reporte.
type Reporte struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReportadorID int64     `gorm:"column:reportador_id;not null;index;comment:quien reporta" json:"reportador_id"`
	ReportadoID  int64     `gorm:"column:reportado_id;not null;index;comment:contraparte reportada" json:"reportado_id"`
	Tipo         string    `gorm:"column:tipo;type:varchar(32);not null;comment:tipo de reporte" json:"tipo"`
	Motivo       string    `gorm:"column:motivo;type:text;not null;comment:payload JSON con motivo y contexto" json:"motivo"`
	Estado       string    `gorm:"column:estado;type:enum('pendiente','revisado','resuelto');default:'pendiente';index" json:"estado"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Reporte) TableName() string { return "reportes" }

// MotivoReporte estructura serializada en Reporte.Motivo.
type MotivoReporte struct {
	Motivo    string            `json:"motivo"`
	MensajeID int64             `json:"mensaje_id"`
	Contexto  []MensajeContexto `json:"contexto"`
	Fecha     time.Time         `json:"fecha"`
}

// MensajeContexto instantánea reducida de un mensaje para el contexto del reporte.
type MensajeContexto struct {
	ID          int64     `json:"id"`
	RemitenteID int64     `json:"remitente_id"`
	Contenido   string    `json:"contenido"`
	FechaEnvio  time.Time `json:"fecha_envio"`
}
