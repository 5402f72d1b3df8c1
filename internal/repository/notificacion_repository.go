package repository

import (
	"context"

	"github.com/BryanHuaPer/viajeros-peru-sub002/model"

	"gorm.io/gorm"
)

// notificacionRepositoryImpl capa de acceso a datos de notificaciones.
type notificacionRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificacionRepository crea el repositorio de notificaciones.
func NewNotificacionRepository(db *gorm.DB) INotificacionRepository {
	return &notificacionRepositoryImpl{db: db}
}

// Crear inserta la notificación. Los llamadores son de mejor esfuerzo: un
// error aquí se registra y se descarta aguas arriba.
func (r *notificacionRepositoryImpl) Crear(ctx context.Context, notificacion *model.Notificacion) error {
	if err := r.db.WithContext(ctx).Create(notificacion).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}
