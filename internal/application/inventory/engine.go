package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// Snapshot es la vista de inventario sobre la que decide el motor: lotes por
// ID y registros de producción por ID. En prevalidación viene de lecturas
// fuera de transacción (posiblemente desactualizadas, se descartan después);
// en la fase atómica viene de relecturas dentro de la transacción y es
// autoritativa.
type Snapshot struct {
	Lots    map[string]*entity.Lot
	Batches map[string]*entity.ProductionBatch
}

// LotWrite es la mutación calculada para un lote: nueva cantidad y estado en
// una sola escritura (vender exactamente el remanente deja el lote SOLD sin
// pasar por un estado intermedio "cero pero activo").
type LotWrite struct {
	Lot      *entity.Lot
	Cantidad decimal.Decimal
	Status   string
}

// BatchWrite es el consumo calculado sobre un registro de producción.
type BatchWrite struct {
	Batch    *entity.ProductionBatch
	Consumed decimal.Decimal
}

// Plan es el conjunto exacto de escrituras que la venta aplica atómicamente.
type Plan struct {
	LotWrites   []LotWrite
	BatchWrites []BatchWrite
}

// Check evalúa la factibilidad del carrito en modo prevalidación: solo
// lectura, best-effort, y recolecta TODAS las violaciones (no solo la
// primera) para reportar el panorama completo. Con el mismo snapshot produce
// siempre el mismo resultado.
func Check(items []entity.SaleItem, snap Snapshot) []error {
	_, violations := resolve(items, snap)
	return violations
}

// Resolve decide en modo atómico: sobre el snapshot releído dentro de la
// transacción calcula las mutaciones exactas, o aborta si un solo ítem es
// infactible (venta parcial no es una política soportada).
func Resolve(items []entity.SaleItem, snap Snapshot) (*Plan, error) {
	plan, violations := resolve(items, snap)
	if err := Combine(violations); err != nil {
		return nil, err
	}
	return plan, nil
}

// Combine reduce la lista de violaciones a un solo error: ninguna → nil, una
// sola conserva su tipo (ej. *domain.StockError), varias se agregan en un
// *domain.ValidationError con todos los detalles.
func Combine(violations []error) error {
	switch len(violations) {
	case 0:
		return nil
	case 1:
		return violations[0]
	default:
		details := make([]string, len(violations))
		for i, v := range violations {
			details[i] = v.Error()
		}
		return domain.NewValidationError(details)
	}
}

// resolve recorre el carrito acumulando efectos sobre copias de trabajo, de
// modo que dos ítems contra el mismo lote o registro se descuenten en cadena.
func resolve(items []entity.SaleItem, snap Snapshot) (*Plan, []error) {
	w := newWorking(snap)
	var violations []error

	for i := range items {
		item := &items[i]
		switch item.Product.Kind {
		case entity.ProductKindWholeLot:
			violations = append(violations, w.sellWhole(item)...)
		case entity.ProductKindQuantityLot:
			violations = append(violations, w.sellQuantity(item)...)
		case entity.ProductKindBatchDerived:
			violations = append(violations, w.sellFromBatches(item)...)
		default:
			violations = append(violations,
				fmt.Errorf("%w: tipo de producto desconocido %q", domain.ErrInvalidInput, item.Product.Kind))
		}
	}
	return w.plan(), violations
}

// working mantiene el estado acumulado del carrito: cantidades y estados de
// lotes y remanentes de registros, más el consumo neto por registro.
type working struct {
	snap       Snapshot
	lotQty     map[string]decimal.Decimal
	lotStatus  map[string]string
	batchLeft  map[string]decimal.Decimal
	batchTaken map[string]decimal.Decimal
	lotOrder   []string
	batchOrder []string
}

func newWorking(snap Snapshot) *working {
	return &working{
		snap:       snap,
		lotQty:     make(map[string]decimal.Decimal),
		lotStatus:  make(map[string]string),
		batchLeft:  make(map[string]decimal.Decimal),
		batchTaken: make(map[string]decimal.Decimal),
	}
}

func (w *working) lot(id string) (*entity.Lot, bool) {
	lot, ok := w.snap.Lots[id]
	if !ok {
		return nil, false
	}
	if _, seen := w.lotQty[id]; !seen {
		w.lotQty[id] = lot.CantidadActual
		w.lotStatus[id] = lot.Status
		w.lotOrder = append(w.lotOrder, id)
	}
	return lot, true
}

func (w *working) sellWhole(item *entity.SaleItem) []error {
	lot, ok := w.lot(item.Product.LotID)
	if !ok {
		return []error{fmt.Errorf("%w: lote %s (%s)", domain.ErrNotFound, item.Product.LotID, item.Product.LotType)}
	}
	if w.lotStatus[lot.ID] != entity.LotStatusActive {
		return []error{fmt.Errorf("%w: el lote %s ya fue vendido", domain.ErrInvalidInput, lot.ID)}
	}
	w.lotStatus[lot.ID] = entity.LotStatusSold
	return nil
}

func (w *working) sellQuantity(item *entity.SaleItem) []error {
	lot, ok := w.lot(item.Product.LotID)
	if !ok {
		return []error{fmt.Errorf("%w: lote %s (%s)", domain.ErrNotFound, item.Product.LotID, item.Product.LotType)}
	}
	// Cantidades fraccionarias (ej. peso convertido a cabezas) se redondean
	// hacia arriba: sobre-asignación consciente, preferible a sub-facturar.
	units := item.Quantity.Ceil()
	// Un lote SOLD no tiene disponibilidad, aunque conserve cantidad (venta
	// entera). Para el comprador es falta de stock, no entrada inválida.
	available := w.lotQty[lot.ID]
	if w.lotStatus[lot.ID] != entity.LotStatusActive {
		available = decimal.Zero
	}
	if units.GreaterThan(available) {
		return []error{&domain.StockError{ItemID: lotItemID(item), Requested: units, Available: available}}
	}
	rest := available.Sub(units)
	w.lotQty[lot.ID] = rest
	if rest.IsZero() {
		w.lotStatus[lot.ID] = entity.LotStatusSold
	}
	return nil
}

func (w *working) sellFromBatches(item *entity.SaleItem) []error {
	// Un producto de producción puede representar una unidad agrupada
	// (1 cubeta = N huevos): la cantidad pedida se convierte a unidades base.
	units := item.Quantity.Mul(item.Product.PackFactor()).Ceil()

	batches := make([]*entity.ProductionBatch, 0, len(item.Product.BatchIDs))
	var missing []error
	for _, id := range item.Product.BatchIDs {
		b, ok := w.snap.Batches[id]
		if !ok {
			missing = append(missing, fmt.Errorf("%w: registro de producción %s", domain.ErrNotFound, id))
			continue
		}
		if _, seen := w.batchLeft[id]; !seen {
			w.batchLeft[id] = b.Remaining()
			w.batchTaken[id] = decimal.Zero
			w.batchOrder = append(w.batchOrder, id)
		}
		batches = append(batches, b)
	}
	if len(missing) > 0 {
		return missing
	}

	// Consumo FIFO: siempre del registro más antiguo primero.
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].Date.Before(batches[j].Date)
	})

	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(w.batchLeft[b.ID])
	}
	if units.GreaterThan(available) {
		return []error{&domain.StockError{ItemID: batchItemID(item), Requested: units, Available: available}}
	}

	pending := units
	for _, b := range batches {
		if pending.IsZero() {
			break
		}
		take := decimal.Min(pending, w.batchLeft[b.ID])
		if take.IsZero() {
			continue
		}
		w.batchLeft[b.ID] = w.batchLeft[b.ID].Sub(take)
		w.batchTaken[b.ID] = w.batchTaken[b.ID].Add(take)
		pending = pending.Sub(take)
	}
	return nil
}

// plan materializa el efecto neto acumulado: una escritura por lote mutado y
// una por registro consumido.
func (w *working) plan() *Plan {
	p := &Plan{}
	for _, id := range w.lotOrder {
		lot := w.snap.Lots[id]
		qty, status := w.lotQty[id], w.lotStatus[id]
		if qty.Equal(lot.CantidadActual) && status == lot.Status {
			continue
		}
		p.LotWrites = append(p.LotWrites, LotWrite{Lot: lot, Cantidad: qty, Status: status})
	}
	for _, id := range w.batchOrder {
		taken := w.batchTaken[id]
		if taken.IsZero() {
			continue
		}
		p.BatchWrites = append(p.BatchWrites, BatchWrite{Batch: w.snap.Batches[id], Consumed: taken})
	}
	return p
}

// Apply escribe el plan con los repositorios atados a la transacción. Todas
// las lecturas de la fase ya ocurrieron: aquí solo hay escrituras.
func (p *Plan) Apply(ctx context.Context, lots repository.LotRepository, batches repository.ProductionBatchRepository) error {
	for _, lw := range p.LotWrites {
		lw.Lot.CantidadActual = lw.Cantidad
		lw.Lot.Status = lw.Status
		if err := lots.Update(ctx, lw.Lot); err != nil {
			return fmt.Errorf("actualizar lote %s: %w", lw.Lot.ID, err)
		}
	}
	for _, bw := range p.BatchWrites {
		bw.Batch.Sold = bw.Batch.Sold.Add(bw.Consumed)
		if err := batches.Update(ctx, bw.Batch); err != nil {
			return fmt.Errorf("actualizar registro %s: %w", bw.Batch.ID, err)
		}
	}
	return nil
}

func lotItemID(item *entity.SaleItem) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Product.LotID
}

func batchItemID(item *entity.SaleItem) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Product.Name
}
