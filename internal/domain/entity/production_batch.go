package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionBatch es un registro de producción (ej. recolección diaria de
// huevos) de un lote de ponedoras. Invariante: Sold <= Produced. Varias ventas
// pueden consumir porciones del mismo registro; el consumo acumulado nunca
// supera lo producido.
type ProductionBatch struct {
	ID       string
	LotID    string
	Date     time.Time // fecha de producción; define el orden FIFO de consumo
	Produced decimal.Decimal
	Sold     decimal.Decimal
	Version  int64
}

// Remaining devuelve las unidades aún disponibles del registro.
func (b *ProductionBatch) Remaining() decimal.Decimal {
	return b.Produced.Sub(b.Sold)
}
