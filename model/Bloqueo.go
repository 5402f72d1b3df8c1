package model

import "time"

// Bloqueo arista dirigida bloqueador -> bloqueado.
// Restricción: uniqueIndex uidx_bloqueador_bloqueado garantiza a lo sumo una
// fila por par ordenado. La evaluación de "¿hay bloqueo?" consulta ambas
// direcciones, pero el almacenamiento es siempre unidireccional: un bloqueo
// mutuo son dos filas creadas por dos acciones independientes.
type Bloqueo struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UsuarioBloqueadorID int64    `gorm:"column:usuario_bloqueador_id;not null;uniqueIndex:uidx_bloqueador_bloqueado;comment:quien bloquea" json:"usuario_bloqueador_id"`
	UsuarioBloqueadoID  int64    `gorm:"column:usuario_bloqueado_id;not null;index;uniqueIndex:uidx_bloqueador_bloqueado;comment:quien queda bloqueado" json:"usuario_bloqueado_id"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Bloqueo) TableName() string { return "bloqueos_usuarios" }
