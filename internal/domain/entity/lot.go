package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de lote: cada tipo vive en su propia colección (tablas disjuntas).
const (
	LotTypePollos   = "pollos"   // lotes de engorde, venta entera o por cabeza
	LotTypeCerdos   = "cerdos"
	LotTypeGallinas = "gallinas" // ponedoras; su producción se vende como huevos
)

// Estados del ciclo de vida de un lote.
const (
	LotStatusActive = "ACTIVE"
	LotStatusSold   = "SOLD"
)

// Lot es la unidad de inventario: un lote de animales vendible entero o por
// cantidad. CantidadActual nunca baja de cero; pasa a SOLD al venderse entero
// o al llegar la cantidad exactamente a cero (misma escritura, sin estado
// intermedio "cero pero activo").
//
// Version es la columna de bloqueo optimista: toda escritura condiciona sobre
// la versión leída y falla con ErrConflict si otra transacción ganó.
type Lot struct {
	ID             string
	LotType        string
	Name           string
	CantidadActual decimal.Decimal
	Status         string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Disponible indica si el lote admite ventas.
func (l *Lot) Disponible() bool {
	return l.Status == LotStatusActive
}
