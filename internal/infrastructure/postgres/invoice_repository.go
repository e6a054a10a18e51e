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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (tablas
// facturas y factura_lineas). venta_id tiene constraint único: respaldo duro
// de "a lo sumo una factura por venta" por debajo de los chequeos del caso de
// uso.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create inserta la factura y sus líneas. Violación del único de venta_id sale
// como ErrAlreadyExists.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO facturas (id, numero, venta_id, venta_numero, cliente_id,
			cliente_nombre, fecha, subtotal, descuento, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.Number, inv.SaleID, inv.SaleNumber, inv.CustomerID,
		inv.CustomerName, inv.Date, inv.Subtotal, inv.Discount, inv.Total, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la venta %s ya tiene factura", domain.ErrAlreadyExists, inv.SaleNumber)
		}
		return fmt.Errorf("insert factura: %w", err)
	}
	for i, l := range inv.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO factura_lineas (factura_id, posicion, descripcion, cantidad,
				precio_unitario, descuento, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			inv.ID, i, l.Description, l.Quantity, l.UnitPrice, l.Discount, l.Total,
		)
		if err != nil {
			return fmt.Errorf("insert factura_linea: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la factura con sus líneas. Retorna nil sin error si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetBySaleID obtiene la factura que referencia la venta, o nil si no hay.
func (r *InvoiceRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error) {
	return r.getWhere(ctx, "venta_id = $1", saleID)
}

func (r *InvoiceRepo) getWhere(ctx context.Context, where, arg string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, `
		SELECT id, numero, venta_id, venta_numero, cliente_id, cliente_nombre,
			fecha, subtotal, descuento, total, created_at
		FROM facturas WHERE `+where, arg).Scan(
		&inv.ID, &inv.Number, &inv.SaleID, &inv.SaleNumber, &inv.CustomerID,
		&inv.CustomerName, &inv.Date, &inv.Subtotal, &inv.Discount, &inv.Total, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT descripcion, cantidad, precio_unitario, descuento, total
		FROM factura_lineas WHERE factura_id = $1 ORDER BY posicion`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("get factura_lineas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.Description, &l.Quantity, &l.UnitPrice, &l.Discount, &l.Total); err != nil {
			return nil, fmt.Errorf("scan factura_linea: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	return &inv, rows.Err()
}
