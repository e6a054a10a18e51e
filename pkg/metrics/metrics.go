package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ExecutorStats contadores Prometheus del ejecutor transaccional: intentos por
// operación y resultado, y operaciones que agotaron sus reintentos.
type ExecutorStats struct {
	Attempts  *prometheus.CounterVec
	Exhausted *prometheus.CounterVec
}

// NewExecutorStats registra los contadores en reg y los devuelve.
func NewExecutorStats(reg prometheus.Registerer) *ExecutorStats {
	s := &ExecutorStats{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "granja",
			Subsystem: "txn",
			Name:      "intentos_total",
			Help:      "Intentos de fase atómica por operación y resultado.",
		}, []string{"operacion", "resultado"}),
		Exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "granja",
			Subsystem: "txn",
			Name:      "reintentos_agotados_total",
			Help:      "Operaciones que agotaron sus reintentos.",
		}, []string{"operacion"}),
	}
	reg.MustRegister(s.Attempts, s.Exhausted)
	return s
}
