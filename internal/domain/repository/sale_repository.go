package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// SaleRepository persistencia de ventas. Create escribe cabecera y líneas en la
// misma transacción del caller.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
}
