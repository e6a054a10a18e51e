package postgres

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

type recordedCall struct {
	sql  string
	args []any
}

// recordingQuerier captura el SQL emitido por el repositorio.
type recordingQuerier struct {
	execs   []recordedCall
	queries []recordedCall
	row     fakeRow
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, recordedCall{sql, args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, recordedCall{sql, args})
	return emptyRows{}, nil
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, recordedCall{sql, args})
	return q.row
}

type fakeRow struct{ vals []any }

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(...any) error                            { return nil }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

func saleWithItems(ids ...string) *entity.Sale {
	sale := &entity.Sale{
		ID:            "V1",
		Number:        "VEN-0001",
		Date:          time.Now(),
		CustomerID:    "C1",
		PaymentMethod: entity.PaymentCash,
		Status:        entity.SaleStatusConfirmed,
	}
	for _, id := range ids {
		sale.Items = append(sale.Items, entity.SaleItem{
			ID: id,
			Product: entity.ProductRef{
				Kind:    entity.ProductKindQuantityLot,
				Name:    "pollo en pie",
				LotType: entity.LotTypePollos,
				LotID:   "L1",
			},
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(10),
		})
	}
	return sale
}

func TestSaleRepoCreate_EscribeLaPosicionEnOrdenDelCarrito(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewSaleRepository(q)

	// IDs en orden lexicográfico inverso al del carrito: si el orden
	// persistido dependiera del ID, la relectura lo permutaría.
	sale := saleWithItems("ccc", "bbb", "aaa")
	require.NoError(t, repo.Create(context.Background(), sale))

	require.Len(t, q.execs, 4, "cabecera más tres líneas")
	for i, call := range q.execs[1:] {
		assert.Contains(t, call.sql, "posicion")
		assert.Equal(t, sale.Items[i].ID, call.args[0], "línea %d", i)
		assert.Equal(t, i, call.args[2], "posicion de la línea %d", i)
	}
}

func TestSaleRepoGetByID_LeeLasLineasPorPosicion(t *testing.T) {
	now := time.Now()
	q := &recordingQuerier{row: fakeRow{vals: []any{
		"V1", "VEN-0001", now, "C1",
		decimal.NewFromInt(30), decimal.Zero, decimal.NewFromInt(30),
		entity.PaymentCash, "", entity.SaleStatusConfirmed, "admin",
		now, now,
	}}}
	repo := NewSaleRepository(q)

	sale, err := repo.GetByID(context.Background(), "V1")
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, "VEN-0001", sale.Number)

	require.Len(t, q.queries, 2, "cabecera y líneas")
	assert.Contains(t, q.queries[1].sql, "ORDER BY posicion",
		"las líneas se releen en el orden del carrito, no por ID")
}
