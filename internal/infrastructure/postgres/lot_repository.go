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

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL. Cada tipo de lote
// vive en su propia tabla (colecciones disjuntas); Update es un CAS sobre la
// columna version.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// tableFor mapea el tipo de lote a su tabla.
func tableFor(lotType string) (string, error) {
	switch lotType {
	case entity.LotTypePollos:
		return "lotes_pollos", nil
	case entity.LotTypeCerdos:
		return "lotes_cerdos", nil
	case entity.LotTypeGallinas:
		return "lotes_gallinas", nil
	default:
		return "", fmt.Errorf("%w: tipo de lote desconocido %q", domain.ErrInvalidInput, lotType)
	}
}

// GetByID obtiene un lote por ID. Retorna nil sin error si no existe.
func (r *LotRepo) GetByID(ctx context.Context, lotType, id string) (*entity.Lot, error) {
	table, err := tableFor(lotType)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, nombre, cantidad_actual, estado, version, created_at, updated_at
		FROM %s WHERE id = $1`, table)
	lot := entity.Lot{LotType: lotType}
	err = r.q.QueryRow(ctx, query, id).Scan(
		&lot.ID, &lot.Name, &lot.CantidadActual, &lot.Status, &lot.Version,
		&lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote: %w", err)
	}
	return &lot, nil
}

// ListByType lista los lotes de un tipo.
func (r *LotRepo) ListByType(ctx context.Context, lotType string) ([]*entity.Lot, error) {
	table, err := tableFor(lotType)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, nombre, cantidad_actual, estado, version, created_at, updated_at
		FROM %s ORDER BY created_at`, table)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()

	var lots []*entity.Lot
	for rows.Next() {
		lot := entity.Lot{LotType: lotType}
		if err := rows.Scan(
			&lot.ID, &lot.Name, &lot.CantidadActual, &lot.Status, &lot.Version,
			&lot.CreatedAt, &lot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lote: %w", err)
		}
		lots = append(lots, &lot)
	}
	return lots, rows.Err()
}

// Update escribe cantidad y estado condicionado a la versión leída. Cero filas
// afectadas significa que otra transacción modificó el lote primero: el caller
// recibe ErrConflict y el ejecutor reintenta desde cero.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	table, err := tableFor(lot.LotType)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET cantidad_actual = $2, estado = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4`, table)
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.CantidadActual, lot.Status, lot.Version)
	if err != nil {
		return fmt.Errorf("update lote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s versión %d", domain.ErrConflict, lot.ID, lot.Version)
	}
	lot.Version++
	return nil
}
