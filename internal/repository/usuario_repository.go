package repository

import (
	"context"

	"github.com/BryanHuaPer/viajeros-peru-sub002/model"

	"gorm.io/gorm"
)

// usuarioRepositoryImpl lectura de usuarios. Este servicio nunca escribe en
// la tabla usuarios.
type usuarioRepositoryImpl struct {
	db *gorm.DB
}

// NewUsuarioRepository crea el repositorio de usuarios.
func NewUsuarioRepository(db *gorm.DB) IUsuarioRepository {
	return &usuarioRepositoryImpl{db: db}
}

// ObtenerPorID lee un usuario por id.
func (r *usuarioRepositoryImpl) ObtenerPorID(ctx context.Context, id int64) (*model.Usuario, error) {
	var usuario model.Usuario
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&usuario).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &usuario, nil
}

// AdministradoresActivos lista los administradores con cuenta activa para el
// fan-out de avisos de reporte.
func (r *usuarioRepositoryImpl) AdministradoresActivos(ctx context.Context) ([]model.Usuario, error) {
	var admins []model.Usuario
	err := r.db.WithContext(ctx).
		Where("rol = ? AND activo = ?", model.RolAdmin, true).
		Find(&admins).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return admins, nil
}
