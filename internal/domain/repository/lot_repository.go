package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// LotRepository acceso a los lotes de inventario (colecciones disjuntas por
// tipo). Update es condicional sobre la versión leída: si otra transacción
// modificó el lote primero, retorna domain.ErrConflict y el ejecutor reintenta.
type LotRepository interface {
	GetByID(ctx context.Context, lotType, id string) (*entity.Lot, error)
	ListByType(ctx context.Context, lotType string) ([]*entity.Lot, error)
	Update(ctx context.Context, lot *entity.Lot) error
}
