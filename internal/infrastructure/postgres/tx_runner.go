package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/granja-ventas/internal/application/txn"
	"github.com/tu-usuario/granja-ventas/internal/domain"
)

var _ txn.Runner = (*TxRunner)(nil)

// TxRunner ejecuta la fase atómica dentro de una transacción PostgreSQL,
// entregando repos atados a ella a través del gate lecturas-antes-de-
// escrituras. Los rechazos por concurrencia (CAS de versión fallido o
// serialization failure) salen como domain.ErrConflict para que el ejecutor
// reintente. Si el contexto se cancela (timeout del intento) la transacción
// hace Rollback: un intento vencido nunca queda aplicado a medias.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunAtomic inicia la transacción, ejecuta fn con los repos atados y hace
// Commit o Rollback.
func (r *TxRunner) RunAtomic(ctx context.Context, fn func(ctx context.Context, repos txn.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("iniciar transacción: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	gate := newTxGate(tx)
	repos := txn.Repos{
		Lots:     NewLotRepository(gate),
		Batches:  NewProductionBatchRepository(gate),
		Sales:    NewSaleRepository(gate),
		Invoices: NewInvoiceRepository(gate),
		Counters: NewSequenceCounterRepository(gate),
	}

	if err := fn(ctx, repos); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: commit rechazado: %v", domain.ErrConflict, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("confirmar transacción: %w", err)
	}
	return nil
}
