package entity

// Nombres de serie para los consecutivos de documentos.
const (
	SeriesSales    = "ventas"
	SeriesInvoices = "facturas"
)

// SequenceCounter es un contador nombrado protegido por la transacción. Cada
// valor entregado es único y estrictamente creciente para su nombre; la
// exclusión entre escritores concurrentes la da el CAS sobre Version, no un
// lock propio.
type SequenceCounter struct {
	Name       string
	NextNumber int64
	Version    int64
}
