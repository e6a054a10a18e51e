package repository

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// SequenceCounterRepository acceso a contadores de consecutivos.
// Get retorna nil (sin error) si el contador no existe todavía.
// Create y Advance retornan domain.ErrConflict si otro escritor ganó la
// carrera (inserción duplicada o CAS de versión fallido).
type SequenceCounterRepository interface {
	Get(ctx context.Context, name string) (*entity.SequenceCounter, error)
	Create(ctx context.Context, counter *entity.SequenceCounter) error
	Advance(ctx context.Context, counter *entity.SequenceCounter) error
}
