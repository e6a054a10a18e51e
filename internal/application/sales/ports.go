package sales

import "context"

// CacheInvalidator invalida entradas del caché externo de inventario después
// del commit. Es una notificación fire-and-forget: la corrección transaccional
// nunca depende del caché, solo la latencia de lectura. Los errores se
// loguean y se ignoran.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// NopInvalidator para despliegues sin caché.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ...string) error { return nil }
