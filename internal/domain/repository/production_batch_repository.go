package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// ProductionBatchRepository acceso a los registros de producción (recolecciones).
// GetByIDs devuelve los registros ordenados por fecha ascendente (orden FIFO de
// consumo). Update usa CAS sobre Version igual que los lotes.
type ProductionBatchRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]*entity.ProductionBatch, error)
	Update(ctx context.Context, batch *entity.ProductionBatch) error
}
