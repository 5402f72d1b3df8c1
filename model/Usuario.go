package model

// Roles de usuario consumidos por este servicio.
const (
	RolViajero = "viajero"
	RolAnfitrion = "anfitrion"
	RolAdmin   = "admin"
)

// Usuario modelo de solo lectura sobre la tabla usuarios.
// La gestión de cuentas vive en otro subsistema; aquí solo se leen los campos
// necesarios para denormalizar nombres en los mensajes y para el fan-out de
// reportes a administradores activos.
type Usuario struct {
	ID       int64  `gorm:"column:id;primaryKey" json:"id"`
	Nombre   string `gorm:"column:nombre;type:varchar(64)" json:"nombre"`
	Apellido string `gorm:"column:apellido;type:varchar(64)" json:"apellido"`
	Email    string `gorm:"column:email;type:varchar(128)" json:"email"`
	Rol      string `gorm:"column:rol;type:varchar(16)" json:"rol"`
	Activo   bool   `gorm:"column:activo;not null;default:1" json:"activo"`
}

func (Usuario) TableName() string { return "usuarios" }

// NombreCompleto concatena nombre y apellido para presentación.
func (u Usuario) NombreCompleto() string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}
