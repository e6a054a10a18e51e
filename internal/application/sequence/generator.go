package sequence

import (
	"context"
	"fmt"

	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// Next asigna el siguiente número de la serie name dentro de la transacción ya
// abierta del caller: lee el contador (creándolo en 1 si no existe), entrega el
// valor leído y escribe value+1.
//
// La unicidad bajo concurrencia la garantiza el store: si dos transacciones
// compiten por el mismo contador, el CAS de versión hace que exactamente una
// confirme y la otra falle con ErrConflict, y el ejecutor la reintente desde
// cero releyendo el contador ya avanzado. Este paquete no maneja ningún lock.
//
// Como Next lee y luego escribe, debe invocarse después de todas las demás
// lecturas de la fase atómica (el store exige lecturas antes de escrituras).
func Next(ctx context.Context, counters repository.SequenceCounterRepository, name string) (int64, error) {
	c, err := counters.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("leer consecutivo %s: %w", name, err)
	}
	if c == nil {
		if err := counters.Create(ctx, &entity.SequenceCounter{Name: name, NextNumber: 2}); err != nil {
			return 0, fmt.Errorf("crear consecutivo %s: %w", name, err)
		}
		return 1, nil
	}
	allocated := c.NextNumber
	c.NextNumber = allocated + 1
	if err := counters.Advance(ctx, c); err != nil {
		return 0, fmt.Errorf("avanzar consecutivo %s: %w", name, err)
	}
	return allocated, nil
}

// Format renderiza el número asignado como {prefijo}-{número} con ceros a la
// izquierda (VEN-0012). El prefijo y el ancho son configuración, no lógica.
func Format(prefix string, number int64, pad int) string {
	return fmt.Sprintf("%s-%0*d", prefix, pad, number)
}
