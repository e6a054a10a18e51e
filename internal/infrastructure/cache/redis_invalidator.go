package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/granja-ventas/internal/application/sales"
)

var _ sales.CacheInvalidator = (*RedisInvalidator)(nil)

// RedisInvalidator borra entradas del caché de inventario en Redis. Es una
// señal fire-and-forget emitida por el post-procesamiento: si Redis no
// responde, la venta ya está confirmada y el caché simplemente expira por TTL.
type RedisInvalidator struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisInvalidator construye el invalidador.
func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client, timeout: 2 * time.Second}
}

// Invalidate elimina las claves indicadas con un timeout corto propio.
func (r *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Del(ctx, keys...).Err()
}
