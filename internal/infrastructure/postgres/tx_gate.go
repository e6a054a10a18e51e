package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/granja-ventas/internal/domain"
)

// txGate envuelve la transacción y hace cumplir por construcción el orden del
// store: todas las lecturas antes de cualquier escritura. Una lectura después
// de la primera escritura es un error de programación, no de runtime, y se
// corta aquí con ErrReadAfterWrite en vez de llegar al servidor.
type txGate struct {
	q     Querier
	wrote bool
}

func newTxGate(q Querier) *txGate { return &txGate{q: q} }

func (g *txGate) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	g.wrote = true
	return g.q.Exec(ctx, sql, args...)
}

func (g *txGate) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if g.wrote {
		return nil, domain.ErrReadAfterWrite
	}
	return g.q.Query(ctx, sql, args...)
}

func (g *txGate) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if g.wrote {
		return errRow{err: domain.ErrReadAfterWrite}
	}
	return g.q.QueryRow(ctx, sql, args...)
}

// errRow es un pgx.Row que falla en Scan con el error dado.
type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
