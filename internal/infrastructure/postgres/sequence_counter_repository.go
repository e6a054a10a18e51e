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

var _ repository.SequenceCounterRepository = (*SequenceCounterRepo)(nil)

// SequenceCounterRepo implementación de SequenceCounterRepository sobre
// PostgreSQL (tabla consecutivos). Tanto Create como Advance pierden limpio
// ante un escritor concurrente: ErrConflict y el ejecutor relee el contador ya
// avanzado. Así dos ventas simultáneas jamás comparten número.
type SequenceCounterRepo struct {
	q Querier
}

// NewSequenceCounterRepository construye el adaptador. Pasar pool o tx.
func NewSequenceCounterRepository(q Querier) *SequenceCounterRepo {
	return &SequenceCounterRepo{q: q}
}

// Get obtiene el contador. Retorna nil sin error si la serie aún no existe.
func (r *SequenceCounterRepo) Get(ctx context.Context, name string) (*entity.SequenceCounter, error) {
	var c entity.SequenceCounter
	err := r.q.QueryRow(ctx, `
		SELECT nombre, siguiente, version FROM consecutivos WHERE nombre = $1`, name).
		Scan(&c.Name, &c.NextNumber, &c.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consecutivo: %w", err)
	}
	return &c, nil
}

// Create inserta la serie nueva. Si otro escritor la creó primero, cero filas
// insertadas -> ErrConflict.
func (r *SequenceCounterRepo) Create(ctx context.Context, counter *entity.SequenceCounter) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO consecutivos (nombre, siguiente, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (nombre) DO NOTHING`,
		counter.Name, counter.NextNumber)
	if err != nil {
		return fmt.Errorf("crear consecutivo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: consecutivo %s creado por otra transacción", domain.ErrConflict, counter.Name)
	}
	return nil
}

// Advance escribe siguiente condicionado a la versión leída.
func (r *SequenceCounterRepo) Advance(ctx context.Context, counter *entity.SequenceCounter) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE consecutivos
		SET siguiente = $2, version = version + 1
		WHERE nombre = $1 AND version = $3`,
		counter.Name, counter.NextNumber, counter.Version)
	if err != nil {
		return fmt.Errorf("avanzar consecutivo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: consecutivo %s versión %d", domain.ErrConflict, counter.Name, counter.Version)
	}
	counter.Version++
	return nil
}
