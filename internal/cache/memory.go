package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

var _ repo.ViewCache = (*MemoryViewCache)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryViewCache is a process local ViewCache. Expired entries are
// dropped lazily on read.
type MemoryViewCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryViewCache() *MemoryViewCache {
	return &MemoryViewCache{entries: make(map[string]entry), now: time.Now}
}

func (c *MemoryViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (c *MemoryViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryViewCache) Invalidate(ctx context.Context, keys ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}
