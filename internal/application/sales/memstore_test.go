package sales_test

import (
	"context"
	"sort"
	"sync"

	"github.com/tu-usuario/granja-ventas/internal/application/txn"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// memStore es un store en memoria con la misma disciplina que el de verdad:
// las transacciones difieren sus escrituras, las confirman con CAS de versión
// (el perdedor recibe ErrConflict) y rechazan toda lectura posterior a la
// primera escritura. Eso permite ejercitar los casos de uso completos,
// carreras incluidas, sin base de datos.
type memStore struct {
	mu        sync.Mutex
	lots      map[string]entity.Lot
	batches   map[string]entity.ProductionBatch
	sales     map[string]entity.Sale
	invoices  map[string]entity.Invoice
	counters  map[string]entity.SequenceCounter
	customers map[string]entity.Customer
	runs      int
}

func newMemStore() *memStore {
	return &memStore{
		lots:      make(map[string]entity.Lot),
		batches:   make(map[string]entity.ProductionBatch),
		sales:     make(map[string]entity.Sale),
		invoices:  make(map[string]entity.Invoice),
		counters:  make(map[string]entity.SequenceCounter),
		customers: make(map[string]entity.Customer),
	}
}

func (s *memStore) putLot(l entity.Lot)               { s.lots[l.ID] = l }
func (s *memStore) putBatch(b entity.ProductionBatch) { s.batches[b.ID] = b }
func (s *memStore) putCustomer(c entity.Customer)     { s.customers[c.ID] = c }

func (s *memStore) lotByID(id string) entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lots[id]
}

func (s *memStore) batchByID(id string) entity.ProductionBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[id]
}

func (s *memStore) counterByName(name string) (entity.SequenceCounter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[name]
	return c, ok
}

func (s *memStore) salesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

func (s *memStore) invoiceBySale(saleID string) (entity.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.SaleID == saleID {
			return inv, true
		}
	}
	return entity.Invoice{}, false
}

func (s *memStore) transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// RunAtomic implementa txn.Runner.
func (s *memStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, r txn.Repos) error) error {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	tx := &memTx{s: s}
	r := txn.Repos{
		Lots:     txLots{tx},
		Batches:  txBatches{tx},
		Sales:    txSales{tx},
		Invoices: txInvoices{tx},
		Counters: txCounters{tx},
	}
	if err := fn(ctx, r); err != nil {
		return err
	}
	return tx.commit()
}

type stagedLot struct {
	lot      entity.Lot
	expected int64
}

type stagedBatch struct {
	batch    entity.ProductionBatch
	expected int64
}

type stagedCounter struct {
	counter  entity.SequenceCounter
	expected int64
}

// memTx acumula las escrituras de la transacción; commit las valida y aplica
// todas bajo el lock o ninguna.
type memTx struct {
	s     *memStore
	wrote bool

	lotWrites       []stagedLot
	batchWrites     []stagedBatch
	saleCreates     []entity.Sale
	invoiceCreates  []entity.Invoice
	counterCreates  []entity.SequenceCounter
	counterAdvances []stagedCounter
}

func (t *memTx) readable() error {
	if t.wrote {
		return domain.ErrReadAfterWrite
	}
	return nil
}

func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, w := range t.lotWrites {
		cur, ok := t.s.lots[w.lot.ID]
		if !ok || cur.Version != w.expected {
			return domain.ErrConflict
		}
	}
	for _, w := range t.batchWrites {
		cur, ok := t.s.batches[w.batch.ID]
		if !ok || cur.Version != w.expected {
			return domain.ErrConflict
		}
	}
	for _, c := range t.counterCreates {
		if _, ok := t.s.counters[c.Name]; ok {
			return domain.ErrConflict
		}
	}
	for _, w := range t.counterAdvances {
		cur, ok := t.s.counters[w.counter.Name]
		if !ok || cur.Version != w.expected {
			return domain.ErrConflict
		}
	}
	for _, sale := range t.saleCreates {
		for _, existing := range t.s.sales {
			if existing.Number == sale.Number {
				return domain.ErrConflict
			}
		}
	}
	for _, inv := range t.invoiceCreates {
		for _, existing := range t.s.invoices {
			if existing.SaleID == inv.SaleID {
				return domain.ErrAlreadyExists
			}
		}
	}

	for _, w := range t.lotWrites {
		w.lot.Version = w.expected + 1
		t.s.lots[w.lot.ID] = w.lot
	}
	for _, w := range t.batchWrites {
		w.batch.Version = w.expected + 1
		t.s.batches[w.batch.ID] = w.batch
	}
	for _, c := range t.counterCreates {
		t.s.counters[c.Name] = c
	}
	for _, w := range t.counterAdvances {
		w.counter.Version = w.expected + 1
		t.s.counters[w.counter.Name] = w.counter
	}
	for _, sale := range t.saleCreates {
		t.s.sales[sale.ID] = copySale(sale)
	}
	for _, inv := range t.invoiceCreates {
		t.s.invoices[inv.ID] = copyInvoice(inv)
	}
	return nil
}

func copySale(s entity.Sale) entity.Sale {
	out := s
	out.Items = append([]entity.SaleItem(nil), s.Items...)
	return out
}

func copyInvoice(inv entity.Invoice) entity.Invoice {
	out := inv
	out.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
	return out
}

// Repositorios atados a la transacción.

type txLots struct{ t *memTx }

func (r txLots) GetByID(_ context.Context, lotType, id string) (*entity.Lot, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	l, ok := r.t.s.lots[id]
	if !ok || l.LotType != lotType {
		return nil, nil
	}
	copia := l
	return &copia, nil
}

func (r txLots) ListByType(_ context.Context, lotType string) ([]*entity.Lot, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memLots{r.t.s}.ListByType(context.Background(), lotType)
}

func (r txLots) Update(_ context.Context, lot *entity.Lot) error {
	r.t.wrote = true
	r.t.lotWrites = append(r.t.lotWrites, stagedLot{lot: *lot, expected: lot.Version})
	return nil
}

type txBatches struct{ t *memTx }

func (r txBatches) GetByIDs(_ context.Context, ids []string) ([]*entity.ProductionBatch, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memBatches{r.t.s}.GetByIDs(context.Background(), ids)
}

func (r txBatches) Update(_ context.Context, b *entity.ProductionBatch) error {
	r.t.wrote = true
	r.t.batchWrites = append(r.t.batchWrites, stagedBatch{batch: *b, expected: b.Version})
	return nil
}

type txSales struct{ t *memTx }

func (r txSales) Create(_ context.Context, sale *entity.Sale) error {
	r.t.wrote = true
	r.t.saleCreates = append(r.t.saleCreates, copySale(*sale))
	return nil
}

func (r txSales) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memSales{r.t.s}.GetByID(context.Background(), id)
}

func (r txSales) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memSales{r.t.s}.List(context.Background(), limit, offset)
}

type txInvoices struct{ t *memTx }

func (r txInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.t.wrote = true
	r.t.invoiceCreates = append(r.t.invoiceCreates, copyInvoice(*inv))
	return nil
}

func (r txInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memInvoices{r.t.s}.GetByID(context.Background(), id)
}

func (r txInvoices) GetBySaleID(_ context.Context, saleID string) (*entity.Invoice, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	return memInvoices{r.t.s}.GetBySaleID(context.Background(), saleID)
}

type txCounters struct{ t *memTx }

func (r txCounters) Get(_ context.Context, name string) (*entity.SequenceCounter, error) {
	if err := r.t.readable(); err != nil {
		return nil, err
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	c, ok := r.t.s.counters[name]
	if !ok {
		return nil, nil
	}
	copia := c
	return &copia, nil
}

func (r txCounters) Create(_ context.Context, c *entity.SequenceCounter) error {
	r.t.wrote = true
	r.t.counterCreates = append(r.t.counterCreates, *c)
	return nil
}

func (r txCounters) Advance(_ context.Context, c *entity.SequenceCounter) error {
	r.t.wrote = true
	r.t.counterAdvances = append(r.t.counterAdvances, stagedCounter{counter: *c, expected: c.Version})
	return nil
}

// Repositorios de pool (fuera de transacción), para prevalidación y consultas.

type memLots struct{ s *memStore }

func (r memLots) GetByID(_ context.Context, lotType, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok || l.LotType != lotType {
		return nil, nil
	}
	copia := l
	return &copia, nil
}

func (r memLots) ListByType(_ context.Context, lotType string) ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.LotType == lotType {
			copia := l
			out = append(out, &copia)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLots) Update(_ context.Context, lot *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.lots[lot.ID]
	if !ok || cur.Version != lot.Version {
		return domain.ErrConflict
	}
	lot.Version++
	r.s.lots[lot.ID] = *lot
	return nil
}

type memBatches struct{ s *memStore }

func (r memBatches) GetByIDs(_ context.Context, ids []string) ([]*entity.ProductionBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.ProductionBatch, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.s.batches[id]; ok {
			copia := b
			out = append(out, &copia)
		}
	}
	// Orden FIFO, igual que la consulta real.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memBatches) Update(_ context.Context, b *entity.ProductionBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.batches[b.ID]
	if !ok || cur.Version != b.Version {
		return domain.ErrConflict
	}
	b.Version++
	r.s.batches[b.ID] = *b
	return nil
}

type memSales struct{ s *memStore }

func (r memSales) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = copySale(*sale)
	return nil
}

func (r memSales) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	copia := copySale(sale)
	return &copia, nil
}

func (r memSales) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Sale
	for _, sale := range r.s.sales {
		copia := copySale(sale)
		all = append(all, &copia)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type memInvoices struct{ s *memStore }

func (r memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.SaleID == inv.SaleID {
			return domain.ErrAlreadyExists
		}
	}
	r.s.invoices[inv.ID] = copyInvoice(*inv)
	return nil
}

func (r memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	copia := copyInvoice(inv)
	return &copia, nil
}

func (r memInvoices) GetBySaleID(_ context.Context, saleID string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.SaleID == saleID {
			copia := copyInvoice(inv)
			return &copia, nil
		}
	}
	return nil, nil
}

type memCustomers struct{ s *memStore }

func (r memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	copia := c
	return &copia, nil
}

func (r memCustomers) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r memCustomers) List(_ context.Context) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.s.customers {
		copia := c
		out = append(out, &copia)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
