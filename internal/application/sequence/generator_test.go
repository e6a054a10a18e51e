package sequence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/granja-ventas/internal/application/sequence"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// fakeCounters simula la tabla de consecutivos con semántica CAS.
type fakeCounters struct {
	counters   map[string]*entity.SequenceCounter
	failCreate bool
	failCAS    bool
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{counters: make(map[string]*entity.SequenceCounter)}
}

func (f *fakeCounters) Get(_ context.Context, name string) (*entity.SequenceCounter, error) {
	c, ok := f.counters[name]
	if !ok {
		return nil, nil
	}
	copia := *c
	return &copia, nil
}

func (f *fakeCounters) Create(_ context.Context, c *entity.SequenceCounter) error {
	if f.failCreate {
		return domain.ErrConflict
	}
	if _, ok := f.counters[c.Name]; ok {
		return domain.ErrConflict
	}
	copia := *c
	f.counters[c.Name] = &copia
	return nil
}

func (f *fakeCounters) Advance(_ context.Context, c *entity.SequenceCounter) error {
	if f.failCAS {
		return domain.ErrConflict
	}
	cur, ok := f.counters[c.Name]
	if !ok {
		return domain.ErrNotFound
	}
	cur.NextNumber = c.NextNumber
	cur.Version++
	return nil
}

func TestNext_PrimeraAsignacionCreaElContadorEnUno(t *testing.T) {
	counters := newFakeCounters()

	n, err := sequence.Next(context.Background(), counters, entity.SeriesSales)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	// El contador queda apuntando al siguiente valor.
	assert.Equal(t, int64(2), counters.counters[entity.SeriesSales].NextNumber)
}

func TestNext_AsignacionesSucesivasSonMonotonas(t *testing.T) {
	counters := newFakeCounters()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := sequence.Next(context.Background(), counters, entity.SeriesInvoices)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, int64(5), prev)
}

func TestNext_SeriesIndependientesNoSeInterfieren(t *testing.T) {
	counters := newFakeCounters()

	v, err := sequence.Next(context.Background(), counters, entity.SeriesSales)
	require.NoError(t, err)
	f, err := sequence.Next(context.Background(), counters, entity.SeriesInvoices)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, int64(1), f)
}

func TestNext_ConflictoDelStoreSePropaga(t *testing.T) {
	counters := newFakeCounters()
	counters.failCreate = true

	_, err := sequence.Next(context.Background(), counters, entity.SeriesSales)
	require.ErrorIs(t, err, domain.ErrConflict)

	counters.failCreate = false
	_, err = sequence.Next(context.Background(), counters, entity.SeriesSales)
	require.NoError(t, err)

	counters.failCAS = true
	_, err = sequence.Next(context.Background(), counters, entity.SeriesSales)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestFormat_RellenaConCeros(t *testing.T) {
	assert.Equal(t, "VEN-0001", sequence.Format("VEN", 1, 4))
	assert.Equal(t, "FAC-0123", sequence.Format("FAC", 123, 4))
	// Números más anchos que el relleno no se truncan.
	assert.Equal(t, "VEN-12345", sequence.Format("VEN", 12345, 4))
}
