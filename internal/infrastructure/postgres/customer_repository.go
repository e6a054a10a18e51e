package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente. Retorna nil sin error si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, `
		SELECT id, nombre, documento, telefono, created_at
		FROM clientes WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

// Create inserta un cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clientes (id, nombre, documento, telefono, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		customer.ID, customer.Name, customer.Document, customer.Phone, customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente con documento %s", domain.ErrAlreadyExists, customer.Document)
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// List lista todos los clientes.
func (r *CustomerRepo) List(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, nombre, documento, telefono, created_at
		FROM clientes ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()

	var customers []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}
