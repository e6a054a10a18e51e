package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tu-usuario/granja-ventas/internal/domain"
	"github.com/tu-usuario/granja-ventas/pkg/logger"
	"github.com/tu-usuario/granja-ventas/pkg/metrics"
)

// Valores por defecto de la política de reintentos.
const (
	DefaultRetries        = 3
	DefaultAttemptTimeout = 30 * time.Second
	DefaultBackoffBase    = 1 * time.Second
	DefaultBackoffMax     = 5 * time.Second
)

// Options política de reintentos de la fase atómica. Retries cuenta los
// reintentos después del primer intento; el backoff es exponencial desde
// BackoffBase, duplicando y con tope BackoffMax.
type Options struct {
	Retries        int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	return o
}

// Phases son las tres fases de una operación de negocio.
//
//   - PreValidate corre fuera de toda transacción: chequeos de solo lectura
//     (existencia, forma) sobre datos posiblemente desactualizados. Retorna
//     datos auxiliares ya resueltos para no re-resolverlos adentro. Si falla,
//     la operación aborta sin abrir transacción.
//   - Atomic corre dentro de una transacción del store, con todas las lecturas
//     antes de cualquier escritura. Debe re-validar lo que PreValidate chequeó:
//     entre fases pasa tiempo y el estado puede haber cambiado.
//   - PostProcess corre después del commit, fuera de transacción. Sus errores
//     se loguean y se tragan: nunca deshacen un commit ni hacen fallar la
//     operación.
type Phases[I, A, O any] struct {
	Name        string
	PreValidate func(ctx context.Context, input I) (A, error)
	Atomic      func(ctx context.Context, r Repos, input I, aux A) (O, error)
	PostProcess func(ctx context.Context, input I, output O) error
}

// Executor orquesta operaciones de negocio en tres fases contra el store.
type Executor struct {
	runner Runner
	log    *logger.Logger
	stats  *metrics.ExecutorStats
}

// NewExecutor construye el ejecutor. stats puede ser nil (sin métricas).
func NewExecutor(runner Runner, log *logger.Logger, stats *metrics.ExecutorStats) *Executor {
	return &Executor{runner: runner, log: log, stats: stats}
}

// Execute corre la operación completa: prevalidación, fase atómica con
// reintentos y post-procesamiento best-effort.
//
// La fase atómica se reintenta ante conflicto optimista o timeout del intento;
// el timeout corre contra la fase atómica completa, no contra cada lectura.
// La prevalidación NO se repite entre reintentos: las relecturas de la fase
// atómica ya subsumen la re-validación. Agotados los reintentos se retorna el
// último error.
func Execute[I, A, O any](ctx context.Context, e *Executor, input I, ph Phases[I, A, O], opts Options) (O, error) {
	var zero O
	opts = opts.withDefaults()

	aux, err := ph.PreValidate(ctx, input)
	if err != nil {
		return zero, err
	}

	var out O
	attempts := opts.Retries + 1
	backoff := opts.BackoffBase
	for attempt := 1; ; attempt++ {
		err = e.runAttempt(ctx, opts.AttemptTimeout, func(txCtx context.Context, r Repos) error {
			var aerr error
			out, aerr = ph.Atomic(txCtx, r, input, aux)
			return aerr
		})
		e.count(ph.Name, err)
		if err == nil {
			break
		}
		if attempt >= attempts || !domain.IsRetryable(err) {
			if domain.IsRetryable(err) && e.stats != nil {
				e.stats.Exhausted.WithLabelValues(ph.Name).Inc()
			}
			return zero, err
		}
		e.log.Warn().
			Str("operacion", ph.Name).
			Int("intento", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("fase atómica rechazada, reintentando")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		backoff *= 2
		if backoff > opts.BackoffMax {
			backoff = opts.BackoffMax
		}
	}

	if ph.PostProcess != nil {
		if perr := ph.PostProcess(ctx, input, out); perr != nil {
			// El commit ya ocurrió: el post-procesamiento jamás propaga error.
			e.log.Error().
				Str("operacion", ph.Name).
				Err(perr).
				Msg("post-procesamiento falló (la operación ya está confirmada)")
		}
	}
	return out, nil
}

// runAttempt corre un intento de la fase atómica contra un timer. Si el
// deadline vence, el runner hace Rollback al cancelarse el contexto y el error
// se traduce a domain.ErrTimeout; para el caller externo un timeout sigue
// siendo "resultado desconocido, re-consultar antes de reintentar".
func (e *Executor) runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, r Repos) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := e.runner.RunAtomic(attemptCtx, fn)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: la fase atómica superó %s", domain.ErrTimeout, timeout)
	}
	return err
}

func (e *Executor) count(op string, err error) {
	if e.stats == nil {
		return
	}
	switch {
	case err == nil:
		e.stats.Attempts.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, domain.ErrConflict):
		e.stats.Attempts.WithLabelValues(op, "conflicto").Inc()
	case errors.Is(err, domain.ErrTimeout):
		e.stats.Attempts.WithLabelValues(op, "timeout").Inc()
	default:
		e.stats.Attempts.WithLabelValues(op, "error").Inc()
	}
}
