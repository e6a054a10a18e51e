package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

var _ repository.ProductionBatchRepository = (*ProductionBatchRepo)(nil)

// ProductionBatchRepo implementación de ProductionBatchRepository sobre
// PostgreSQL (tabla producciones). Update usa CAS de versión igual que los
// lotes.
type ProductionBatchRepo struct {
	q Querier
}

// NewProductionBatchRepository construye el adaptador. Pasar pool o tx.
func NewProductionBatchRepository(q Querier) *ProductionBatchRepo {
	return &ProductionBatchRepo{q: q}
}

// GetByIDs obtiene los registros indicados ordenados por fecha ascendente
// (orden FIFO de consumo). Los IDs inexistentes simplemente no aparecen.
func (r *ProductionBatchRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.ProductionBatch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, lote_id, fecha, producido, vendido, version
		FROM producciones WHERE id = ANY($1)
		ORDER BY fecha, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get producciones: %w", err)
	}
	defer rows.Close()

	var batches []*entity.ProductionBatch
	for rows.Next() {
		var b entity.ProductionBatch
		if err := rows.Scan(&b.ID, &b.LotID, &b.Date, &b.Produced, &b.Sold, &b.Version); err != nil {
			return nil, fmt.Errorf("scan producción: %w", err)
		}
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}

// Update escribe el acumulado vendido condicionado a la versión leída. La
// restricción vendido <= producido también está en la tabla como CHECK, por si
// un bug del motor calculara un consumo imposible.
func (r *ProductionBatchRepo) Update(ctx context.Context, batch *entity.ProductionBatch) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE producciones
		SET vendido = $2, version = version + 1
		WHERE id = $1 AND version = $3`,
		batch.ID, batch.Sold, batch.Version)
	if err != nil {
		return fmt.Errorf("update producción: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producción %s versión %d", domain.ErrConflict, batch.ID, batch.Version)
	}
	batch.Version++
	return nil
}
