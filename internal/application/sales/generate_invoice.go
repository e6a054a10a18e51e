package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/granja-ventas/internal/application/sequence"
	"github.com/tu-usuario/granja-ventas/internal/application/txn"
	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// InvoiceUseCase deriva facturas de ventas confirmadas: snapshot inmutable de
// cliente, líneas y totales con su propio consecutivo, a lo sumo una por
// venta. Corre en su propia fase atómica, separada de la venta.
type InvoiceUseCase struct {
	executor     *txn.Executor
	saleRepo     repository.SaleRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	series       SeriesConfig
	opts         txn.Options
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	executor *txn.Executor,
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	series SeriesConfig,
	opts txn.Options,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		executor:     executor,
		saleRepo:     saleRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		series:       series,
		opts:         opts,
	}
}

// invoiceAux venta resuelta y nombre del cliente para el snapshot.
type invoiceAux struct {
	sale         *entity.Sale
	customerName string
}

// Generate crea la factura de la venta indicada. La unicidad se chequea con
// una consulta fresca en prevalidación y se re-chequea dentro de la
// transacción; la restricción única del store respalda ambas por si dos
// derivaciones compiten.
func (uc *InvoiceUseCase) Generate(ctx context.Context, saleID string) (*entity.Invoice, error) {
	phases := txn.Phases[string, *invoiceAux, *entity.Invoice]{
		Name:        "generar_factura",
		PreValidate: uc.preValidate,
		Atomic:      uc.atomic,
	}
	return txn.Execute(ctx, uc.executor, saleID, phases, uc.opts)
}

func (uc *InvoiceUseCase) preValidate(ctx context.Context, saleID string) (*invoiceAux, error) {
	if saleID == "" {
		return nil, domain.NewValidationError([]string{"saleId es obligatorio"})
	}
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	if sale.Status != entity.SaleStatusConfirmed {
		return nil, fmt.Errorf("%w: venta %s en estado %s", domain.ErrNotConfirmed, sale.Number, sale.Status)
	}
	existing, err := uc.invoiceRepo.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: la venta %s ya tiene factura %s", domain.ErrAlreadyExists, sale.Number, existing.Number)
	}

	customerName := ""
	if customer, err := uc.customerRepo.GetByID(ctx, sale.CustomerID); err == nil && customer != nil {
		customerName = customer.Name
	}
	return &invoiceAux{sale: sale, customerName: customerName}, nil
}

// atomic re-chequea la unicidad dentro de la transacción (entre fases pudo
// colarse otra derivación), asigna el consecutivo y escribe el snapshot.
// Lecturas primero, escrituras después.
func (uc *InvoiceUseCase) atomic(ctx context.Context, r txn.Repos, saleID string, aux *invoiceAux) (*entity.Invoice, error) {
	sale, err := r.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	if sale.Status != entity.SaleStatusConfirmed {
		return nil, fmt.Errorf("%w: venta %s en estado %s", domain.ErrNotConfirmed, sale.Number, sale.Status)
	}
	existing, err := r.Invoices.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: la venta %s ya tiene factura %s", domain.ErrAlreadyExists, sale.Number, existing.Number)
	}

	n, err := sequence.Next(ctx, r.Counters, entity.SeriesInvoices)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		ID:           uuid.New().String(),
		Number:       sequence.Format(uc.series.InvoicePrefix, n, uc.series.Pad),
		SaleID:       sale.ID,
		SaleNumber:   sale.Number,
		CustomerID:   sale.CustomerID,
		CustomerName: aux.customerName,
		Date:         time.Now(),
		Subtotal:     sale.Subtotal,
		Discount:     sale.Discount,
		Total:        sale.Total,
		CreatedAt:    time.Now(),
	}
	for _, it := range sale.Items {
		inv.Lines = append(inv.Lines, entity.InvoiceLine{
			Description: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Total:       it.Total,
		})
	}
	if err := r.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice consulta una factura por ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	return inv, nil
}
