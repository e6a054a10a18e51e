package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// InvoiceRepository persistencia de facturas. GetBySaleID soporta el chequeo de
// unicidad (a lo sumo una factura por venta); Create debe fallar con
// domain.ErrAlreadyExists si otra factura referencia la misma venta.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error)
}
