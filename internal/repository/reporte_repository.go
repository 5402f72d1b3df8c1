package repository

import (
	"context"

	"github.com/BryanHuaPer/viajeros-peru-sub002/model"

	"gorm.io/gorm"
)

// reporteRepositoryImpl capa de acceso a datos de reportes.
type reporteRepositoryImpl struct {
	db *gorm.DB
}

// NewReporteRepository crea el repositorio de reportes.
func NewReporteRepository(db *gorm.DB) IReporteRepository {
	return &reporteRepositoryImpl{db: db}
}

// Crear inserta el reporte en estado pendiente y devuelve su id.
func (r *reporteRepositoryImpl) Crear(ctx context.Context, reporte *model.Reporte) (int64, error) {
	if reporte.Estado == "" {
		reporte.Estado = model.ReporteEstadoPendiente
	}
	if err := r.db.WithContext(ctx).Create(reporte).Error; err != nil {
		return 0, WrapDBError(err)
	}
	return reporte.ID, nil
}
