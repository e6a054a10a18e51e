package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
)

// CreateSaleRequest carrito de venta. Cada ítem trae su producto ya resuelto
// como unión etiquetada (tipo + referencia explícita a lote o registros de
// producción), nunca como identificador compuesto a parsear.
type CreateSaleRequest struct {
	CustomerID    string            `json:"customerId"`
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"paymentMethod"`
	Note          string            `json:"note,omitempty"`
}

// SaleItemRequest una línea del carrito.
type SaleItemRequest struct {
	Kind         string          `json:"kind"` // lote_entero | lote_cantidad | produccion
	Name         string          `json:"name"`
	LotType      string          `json:"lotType,omitempty"`
	LotID        string          `json:"lotId,omitempty"`
	BatchIDs     []string        `json:"batchIds,omitempty"`
	UnitsPerPack decimal.Decimal `json:"unitsPerPack,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Discount     decimal.Decimal `json:"discount,omitempty"`
}

// SaleResponse venta creada o consultada.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	Date          time.Time          `json:"date"`
	CustomerID    string             `json:"customerId"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Note          string             `json:"note,omitempty"`
	Status        string             `json:"status"`
}

// SaleItemResponse línea de venta con el snapshot del producto.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceResponse factura derivada de una venta.
type InvoiceResponse struct {
	ID           string                `json:"id"`
	Number       string                `json:"number"`
	SaleID       string                `json:"saleId"`
	SaleNumber   string                `json:"saleNumber"`
	CustomerID   string                `json:"customerId"`
	CustomerName string                `json:"customerName"`
	Date         time.Time             `json:"date"`
	Lines        []InvoiceLineResponse `json:"lines"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	Discount     decimal.Decimal       `json:"discount"`
	Total        decimal.Decimal       `json:"total"`
}

// InvoiceLineResponse línea desnormalizada de la factura.
type InvoiceLineResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// FromSale convierte la entidad a respuesta.
func FromSale(s *entity.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		Date:          s.Date,
		CustomerID:    s.CustomerID,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Note:          s.Note,
		Status:        s.Status,
		Items:         make([]SaleItemResponse, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        it.ID,
			Kind:      it.Product.Kind,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Subtotal:  it.Subtotal,
			Total:     it.Total,
		})
	}
	return resp
}

// FromInvoice convierte la entidad a respuesta.
func FromInvoice(inv *entity.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		SaleID:       inv.SaleID,
		SaleNumber:   inv.SaleNumber,
		CustomerID:   inv.CustomerID,
		CustomerName: inv.CustomerName,
		Date:         inv.Date,
		Subtotal:     inv.Subtotal,
		Discount:     inv.Discount,
		Total:        inv.Total,
		Lines:        make([]InvoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Total:       l.Total,
		})
	}
	return resp
}
