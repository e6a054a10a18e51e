package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/granja-ventas/internal/application/dto"
	"github.com/tu-usuario/granja-ventas/internal/application/inventory"
	"github.com/tu-usuario/granja-ventas/internal/application/sequence"
	"github.com/tu-usuario/granja-ventas/internal/application/txn"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
	"github.com/tu-usuario/granja-ventas/pkg/logger"
)

// SeriesConfig prefijos y relleno de los consecutivos de documentos.
type SeriesConfig struct {
	SalePrefix    string // ej. "VEN"
	InvoicePrefix string // ej. "FAC"
	Pad           int    // ancho del número con ceros (4 -> VEN-0007)
}

// SaleUseCase crea ventas reservando inventario heterogéneo de forma atómica:
// venta + mutaciones de lotes y registros + avance del consecutivo en una sola
// transacción, con la factura derivada como post-procesamiento best-effort.
type SaleUseCase struct {
	executor     *txn.Executor
	customerRepo repository.CustomerRepository
	lotRepo      repository.LotRepository
	batchRepo    repository.ProductionBatchRepository
	saleRepo     repository.SaleRepository
	invoiceUC    *InvoiceUseCase
	invalidator  CacheInvalidator
	series       SeriesConfig
	opts         txn.Options
	log          *logger.Logger
}

// NewSaleUseCase construye el caso de uso. invalidator puede ser NopInvalidator.
func NewSaleUseCase(
	executor *txn.Executor,
	customerRepo repository.CustomerRepository,
	lotRepo repository.LotRepository,
	batchRepo repository.ProductionBatchRepository,
	saleRepo repository.SaleRepository,
	invoiceUC *InvoiceUseCase,
	invalidator CacheInvalidator,
	series SeriesConfig,
	opts txn.Options,
	log *logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		executor:     executor,
		customerRepo: customerRepo,
		lotRepo:      lotRepo,
		batchRepo:    batchRepo,
		saleRepo:     saleRepo,
		invoiceUC:    invoiceUC,
		invalidator:  invalidator,
		series:       series,
		opts:         opts,
		log:          log,
	}
}

// saleAux datos resueltos en prevalidación para no re-resolverlos en la fase
// atómica (las lecturas de inventario sí se repiten ahí: son autoritativas).
type saleAux struct {
	customer *entity.Customer
	items    []entity.SaleItem
}

// CreateSale ejecuta el flujo completo de venta a través del ejecutor de tres
// fases. El caller recibe una venta completa o un error estructurado; la
// aplicación parcial (inventario descontado sin venta escrita) es imposible
// por construcción de la fase atómica.
func (uc *SaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	phases := txn.Phases[dto.CreateSaleRequest, *saleAux, *entity.Sale]{
		Name:        "crear_venta",
		PreValidate: func(ctx context.Context, in dto.CreateSaleRequest) (*saleAux, error) { return uc.preValidate(ctx, in) },
		Atomic: func(ctx context.Context, r txn.Repos, in dto.CreateSaleRequest, aux *saleAux) (*entity.Sale, error) {
			return uc.atomic(ctx, r, userID, in, aux)
		},
		PostProcess: uc.postProcess,
	}
	return txn.Execute(ctx, uc.executor, in, phases, uc.opts)
}

// preValidate corre fuera de transacción: chequeos de forma, existencia del
// cliente y factibilidad best-effort sobre lecturas posiblemente viejas. Con
// estado de respaldo sin cambios produce siempre el mismo resultado.
func (uc *SaleUseCase) preValidate(ctx context.Context, in dto.CreateSaleRequest) (*saleAux, error) {
	var details []string
	if in.CustomerID == "" {
		details = append(details, "customerId es obligatorio")
	}
	if len(in.Items) == 0 {
		details = append(details, "la venta debe tener al menos un ítem")
	}
	switch in.PaymentMethod {
	case entity.PaymentCash, entity.PaymentTransfer, entity.PaymentCredit:
	default:
		details = append(details, fmt.Sprintf("método de pago desconocido %q", in.PaymentMethod))
	}

	items := make([]entity.SaleItem, 0, len(in.Items))
	for i, it := range in.Items {
		if !it.Quantity.GreaterThan(decimal.Zero) {
			details = append(details, fmt.Sprintf("ítem %d: la cantidad debe ser mayor que cero", i))
		}
		if it.UnitPrice.LessThan(decimal.Zero) || it.Discount.LessThan(decimal.Zero) {
			details = append(details, fmt.Sprintf("ítem %d: precio y descuento no pueden ser negativos", i))
		}
		switch it.Kind {
		case entity.ProductKindWholeLot:
			if !it.Quantity.Equal(decimal.NewFromInt(1)) {
				details = append(details, fmt.Sprintf("ítem %d: un lote entero se vende en cantidad 1", i))
			}
			fallthrough
		case entity.ProductKindQuantityLot:
			if it.LotID == "" || it.LotType == "" {
				details = append(details, fmt.Sprintf("ítem %d: lotId y lotType son obligatorios", i))
			}
		case entity.ProductKindBatchDerived:
			if len(it.BatchIDs) == 0 {
				details = append(details, fmt.Sprintf("ítem %d: batchIds es obligatorio para producción", i))
			}
		default:
			details = append(details, fmt.Sprintf("ítem %d: tipo de producto desconocido %q", i, it.Kind))
		}
		items = append(items, entity.SaleItem{
			ID: uuid.New().String(),
			Product: entity.ProductRef{
				Kind:         it.Kind,
				Name:         it.Name,
				UnitPrice:    it.UnitPrice,
				LotType:      it.LotType,
				LotID:        it.LotID,
				BatchIDs:     it.BatchIDs,
				UnitsPerPack: it.UnitsPerPack,
			},
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		})
	}
	if len(details) > 0 {
		return nil, domain.NewValidationError(details)
	}

	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
	}

	// Factibilidad best-effort sobre inventario vivo (fuera de transacción).
	// Estas lecturas son desechables: la fase atómica relee todo.
	snap, err := uc.readSnapshot(ctx, uc.lotRepo, uc.batchRepo, items)
	if err != nil {
		return nil, err
	}
	if err := inventory.Combine(inventory.Check(items, snap)); err != nil {
		return nil, err
	}
	return &saleAux{customer: customer, items: items}, nil
}

// atomic corre dentro de la transacción. Orden estricto: primero TODAS las
// lecturas (lotes, registros y al final el contador, que lee y escribe),
// después todas las escrituras.
func (uc *SaleUseCase) atomic(ctx context.Context, r txn.Repos, userID string, in dto.CreateSaleRequest, aux *saleAux) (*entity.Sale, error) {
	snap, err := uc.readSnapshot(ctx, r.Lots, r.Batches, aux.items)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.Resolve(aux.items, snap)
	if err != nil {
		return nil, err
	}

	n, err := sequence.Next(ctx, r.Counters, entity.SeriesSales)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		Number:        sequence.Format(uc.series.SalePrefix, n, uc.series.Pad),
		Date:          now,
		CustomerID:    aux.customer.ID,
		Items:         aux.items,
		PaymentMethod: in.PaymentMethod,
		Note:          in.Note,
		Status:        entity.SaleStatusConfirmed,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	sale.ComputeTotals()

	if err := plan.Apply(ctx, r.Lots, r.Batches); err != nil {
		return nil, err
	}
	if err := r.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// postProcess corre después del commit: invalida el caché de inventario y
// deriva la factura en su propia fase atómica. Un fallo aquí deja una venta
// sin factura — hueco detectable y recuperable (la factura se puede generar
// después bajo demanda), no una violación de consistencia.
func (uc *SaleUseCase) postProcess(ctx context.Context, _ dto.CreateSaleRequest, sale *entity.Sale) error {
	keys := cacheKeysFor(sale)
	if err := uc.invalidator.Invalidate(ctx, keys...); err != nil {
		uc.log.Warn().Err(err).Str("venta", sale.Number).Msg("invalidación de caché de inventario falló")
	}
	if _, err := uc.invoiceUC.Generate(ctx, sale.ID); err != nil {
		return fmt.Errorf("derivar factura de %s: %w", sale.Number, err)
	}
	return nil
}

// readSnapshot lee lotes y registros referenciados por el carrito usando los
// repositorios dados (de pool en prevalidación, de transacción en la fase
// atómica).
func (uc *SaleUseCase) readSnapshot(
	ctx context.Context,
	lots repository.LotRepository,
	batches repository.ProductionBatchRepository,
	items []entity.SaleItem,
) (inventory.Snapshot, error) {
	snap := inventory.Snapshot{
		Lots:    make(map[string]*entity.Lot),
		Batches: make(map[string]*entity.ProductionBatch),
	}
	var batchIDs []string
	seenBatch := make(map[string]bool)
	for i := range items {
		p := &items[i].Product
		switch p.Kind {
		case entity.ProductKindWholeLot, entity.ProductKindQuantityLot:
			if _, ok := snap.Lots[p.LotID]; ok {
				continue
			}
			lot, err := lots.GetByID(ctx, p.LotType, p.LotID)
			if err != nil {
				return snap, err
			}
			if lot != nil {
				snap.Lots[lot.ID] = lot
			}
		case entity.ProductKindBatchDerived:
			for _, id := range p.BatchIDs {
				if !seenBatch[id] {
					seenBatch[id] = true
					batchIDs = append(batchIDs, id)
				}
			}
		}
	}
	if len(batchIDs) > 0 {
		bs, err := batches.GetByIDs(ctx, batchIDs)
		if err != nil {
			return snap, err
		}
		for _, b := range bs {
			snap.Batches[b.ID] = b
		}
	}
	return snap, nil
}

// GetSale consulta una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return sale, nil
}

// ListSales lista ventas recientes.
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.saleRepo.List(ctx, limit, offset)
}

// CancelSale existe en el modelo de estados pero la reversa de inventario
// nunca se definió aguas arriba (¿se devuelve a los registros originalmente
// consumidos o a los más antiguos aún abiertos?).
// TODO: definir la semántica de reversa FIFO antes de implementar.
func (uc *SaleUseCase) CancelSale(ctx context.Context, id string) error {
	return domain.ErrCancelUnsupported
}

// cacheKeysFor deriva las claves de caché a invalidar por los ítems vendidos.
func cacheKeysFor(sale *entity.Sale) []string {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, it := range sale.Items {
		switch it.Product.Kind {
		case entity.ProductKindWholeLot, entity.ProductKindQuantityLot:
			add("inventario:" + it.Product.LotType + ":" + it.Product.LotID)
		case entity.ProductKindBatchDerived:
			for _, id := range it.Product.BatchIDs {
				add("produccion:" + id)
			}
		}
	}
	return keys
}
