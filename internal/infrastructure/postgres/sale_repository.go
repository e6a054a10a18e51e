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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (tablas ventas y
// venta_items).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas. El número de venta tiene constraint único:
// si dos transacciones llegaran aquí con el mismo consecutivo (no debería, el
// CAS del contador lo impide) la segunda falla con ErrConflict.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ventas (id, numero, fecha, cliente_id, subtotal, descuento, total,
			metodo_pago, nota, estado, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sale.ID, sale.Number, sale.Date, sale.CustomerID,
		sale.Subtotal, sale.Discount, sale.Total,
		sale.PaymentMethod, sale.Note, sale.Status,
		sale.CreatedBy, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de venta %s duplicado", domain.ErrConflict, sale.Number)
		}
		return fmt.Errorf("insert venta: %w", err)
	}
	// posicion conserva el orden del carrito: los IDs son UUIDs y no ordenan.
	for i, it := range sale.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO venta_items (id, venta_id, posicion, kind, nombre, lot_type, lote_id,
				batch_ids, units_per_pack, cantidad, precio_unitario, descuento, subtotal, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			it.ID, sale.ID, i, it.Product.Kind, it.Product.Name,
			it.Product.LotType, it.Product.LotID,
			it.Product.BatchIDs, it.Product.UnitsPerPack,
			it.Quantity, it.UnitPrice, it.Discount, it.Subtotal, it.Total,
		)
		if err != nil {
			return fmt.Errorf("insert venta_item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas. Retorna nil sin error si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `
		SELECT id, numero, fecha, cliente_id, subtotal, descuento, total,
			metodo_pago, nota, estado, created_by, created_at, updated_at
		FROM ventas WHERE id = $1`, id).Scan(
		&s.ID, &s.Number, &s.Date, &s.CustomerID,
		&s.Subtotal, &s.Discount, &s.Total,
		&s.PaymentMethod, &s.Note, &s.Status,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	items, err := r.itemsOf(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// List lista ventas recientes (sin líneas) paginadas.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, numero, fecha, cliente_id, subtotal, descuento, total,
			metodo_pago, nota, estado, created_by, created_at, updated_at
		FROM ventas ORDER BY fecha DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ventas: %w", err)
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.Number, &s.Date, &s.CustomerID,
			&s.Subtotal, &s.Discount, &s.Total,
			&s.PaymentMethod, &s.Note, &s.Status,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		sales = append(sales, &s)
	}
	return sales, rows.Err()
}

func (r *SaleRepo) itemsOf(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, kind, nombre, lot_type, lote_id, batch_ids, units_per_pack,
			cantidad, precio_unitario, descuento, subtotal, total
		FROM venta_items WHERE venta_id = $1 ORDER BY posicion`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get venta_items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(
			&it.ID, &it.Product.Kind, &it.Product.Name,
			&it.Product.LotType, &it.Product.LotID,
			&it.Product.BatchIDs, &it.Product.UnitsPerPack,
			&it.Quantity, &it.UnitPrice, &it.Discount, &it.Subtotal, &it.Total,
		); err != nil {
			return nil, fmt.Errorf("scan venta_item: %w", err)
		}
		it.Product.UnitPrice = it.UnitPrice
		items = append(items, it)
	}
	return items, rows.Err()
}
