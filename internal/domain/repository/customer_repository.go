package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// CustomerRepository acceso a clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	Create(ctx context.Context, customer *entity.Customer) error
	List(ctx context.Context) ([]*entity.Customer, error)
}
