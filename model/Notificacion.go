package model

import "time"

// Tipos de notificación generados por mensajería.
const (
	NotificacionNuevoMensaje = "nuevo_mensaje"
	NotificacionReporte      = "reporte_mensaje"
)

// Notificacion registro de mejor esfuerzo para el centro de notificaciones.
// Un fallo al crearla nunca revierte la operación que la originó.
type Notificacion struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UsuarioID int64     `gorm:"column:usuario_id;not null;index;comment:destinatario de la notificación" json:"usuario_id"`
	Tipo      string    `gorm:"column:tipo;type:varchar(32);not null" json:"tipo"`
	Titulo    string    `gorm:"column:titulo;type:varchar(128);not null" json:"titulo"`
	Contenido string    `gorm:"column:contenido;type:varchar(512)" json:"contenido"`
	Leida     bool      `gorm:"column:leida;not null;default:0" json:"leida"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notificacion) TableName() string { return "notificaciones" }
