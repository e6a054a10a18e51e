package entity

import "github.com/shopspring/decimal"

// Variantes de producto. El tipo es un campo explícito del snapshot: nunca se
// recupera parseando identificadores compuestos.
const (
	ProductKindWholeLot     = "lote_entero"   // vende el lote completo como una unidad
	ProductKindQuantityLot  = "lote_cantidad" // descuenta cabezas de CantidadActual
	ProductKindBatchDerived = "produccion"    // consume registros de producción (FIFO)
)

// ProductRef es la vista vendible de un ítem de inventario: unión etiquetada
// sobre las tres variantes. Según Kind:
//   - lote_entero / lote_cantidad: LotType y LotID referencian el lote.
//   - produccion: BatchIDs referencia los registros de producción agregados y
//     UnitsPerPack es el factor de agrupación (ej. 1 cubeta = 30 huevos);
//     cero o uno significa venta por unidad suelta.
type ProductRef struct {
	Kind         string
	Name         string
	UnitPrice    decimal.Decimal
	LotType      string
	LotID        string
	BatchIDs     []string
	UnitsPerPack decimal.Decimal
}

// PackFactor devuelve el factor de agrupación efectivo (mínimo 1).
func (p *ProductRef) PackFactor() decimal.Decimal {
	if p.UnitsPerPack.GreaterThan(decimal.NewFromInt(1)) {
		return p.UnitsPerPack
	}
	return decimal.NewFromInt(1)
}
