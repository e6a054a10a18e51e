package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice es un snapshot inmutable de una venta CONFIRMED: copia puntual de
// cliente, líneas y totales, con su propio consecutivo (FAC-0012). Se crea a lo
// sumo una vez por venta y vive independiente de ella después de creada.
type Invoice struct {
	ID           string
	Number       string
	SaleID       string
	SaleNumber   string
	CustomerID   string
	CustomerName string
	Date         time.Time
	Lines        []InvoiceLine
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	CreatedAt    time.Time
}

// InvoiceLine es la copia desnormalizada de una línea de venta.
type InvoiceLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}
