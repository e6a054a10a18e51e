package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. Las ventas nacen CONFIRMED (el flujo de creación las
// confirma en la misma fase atómica); PENDING existe en el modelo pero no se
// observa en la práctica.
const (
	SaleStatusPending   = "PENDING"
	SaleStatusConfirmed = "CONFIRMED"
	SaleStatusCancelled = "CANCELLED"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "efectivo"
	PaymentTransfer = "transferencia"
	PaymentCredit   = "credito"
)

// Sale es el documento de venta. Number es el consecutivo legible (VEN-0007)
// asignado por el generador de secuencias dentro de la misma transacción que
// escribe la venta y muta el inventario. Inmutable una vez CONFIRMED, salvo la
// cancelación (fuera del alcance actual).
type Sale struct {
	ID            string
	Number        string
	Date          time.Time
	CustomerID    string
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Note          string
	Status        string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem es una línea de venta. Product es una copia desnormalizada del
// producto al momento de vender; no se vuelve a leer después.
type SaleItem struct {
	ID        string
	Product   ProductRef
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals calcula subtotal y total de la línea a partir de cantidad,
// precio y descuento.
func (it *SaleItem) ComputeTotals() {
	it.Subtotal = it.Quantity.Mul(it.UnitPrice)
	it.Total = it.Subtotal.Sub(it.Discount)
}

// ComputeTotals agrega los totales de las líneas sobre la venta.
func (s *Sale) ComputeTotals() {
	s.Subtotal = decimal.Zero
	s.Discount = decimal.Zero
	for i := range s.Items {
		s.Items[i].ComputeTotals()
		s.Subtotal = s.Subtotal.Add(s.Items[i].Subtotal)
		s.Discount = s.Discount.Add(s.Items[i].Discount)
	}
	s.Total = s.Subtotal.Sub(s.Discount)
}
