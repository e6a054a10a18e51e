package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrAlreadyExists     = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto de concurrencia")
	ErrTimeout           = errors.New("tiempo de espera agotado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNotConfirmed      = errors.New("la venta no está confirmada")
	ErrReadAfterWrite    = errors.New("lectura después de escritura dentro de la transacción")
	ErrCancelUnsupported = errors.New("cancelación de venta no soportada")
)

// ValidationError agrupa todas las violaciones encontradas en la prevalidación,
// no solo la primera, para que el caller reciba el panorama completo.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validación fallida: " + strings.Join(e.Details, "; ")
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye el error agregado. details no debe estar vacío.
func NewValidationError(details []string) *ValidationError {
	return &ValidationError{Details: details}
}

// StockError identifica el ítem exacto y el faltante cuando no hay stock.
type StockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *StockError) Error() string {
	shortfall := e.Requested.Sub(e.Available)
	return fmt.Sprintf("stock insuficiente para %s: solicitado %s, disponible %s (faltan %s)",
		e.ItemID, e.Requested, e.Available, shortfall)
}

// Shortfall devuelve cuántas unidades faltaron.
func (e *StockError) Shortfall() decimal.Decimal { return e.Requested.Sub(e.Available) }

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// IsRetryable indica si el error amerita reintentar la fase atómica:
// conflicto optimista (CAS fallido o serialization failure) o timeout del
// intento. El runner hace Rollback al cancelarse el contexto, lo que cubre los
// intentos cancelados antes de enviar el COMMIT; si el deadline vence con el
// COMMIT ya en vuelo la transacción pudo quedar aplicada. Por eso el timeout
// que llega al caller se reporta como resultado desconocido: re-consultar
// antes de reintentar por fuera.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTimeout)
}
