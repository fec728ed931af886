package repo

import (
	"context"
	"time"
)

// ViewCache caches server views (order details, order lists, menus) that
// push events invalidate.
type ViewCache interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes keys and reports how many were present.
	Invalidate(ctx context.Context, keys ...string) (int, error)
}
