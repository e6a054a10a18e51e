package txn

import (
	"context"

	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// Repos es el conjunto de repositorios atados a la transacción en curso que la
// fase atómica recibe. Fuera de la fase atómica se usan los repositorios
// normales (pool), nunca estos.
type Repos struct {
	Lots     repository.LotRepository
	Batches  repository.ProductionBatchRepository
	Sales    repository.SaleRepository
	Invoices repository.InvoiceRepository
	Counters repository.SequenceCounterRepository
}

// Runner abre una transacción del store, entrega repos atados a ella y hace
// Commit si fn retorna nil o Rollback si falla. La implementación debe:
//   - rechazar lecturas posteriores a la primera escritura (el modelo del
//     store exige todas las lecturas antes de cualquier escritura), y
//   - traducir los rechazos por concurrencia a domain.ErrConflict.
type Runner interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
