// Package memory provides in-process cart storage for tests and
// single-instance deployments.
package memory

import (
	"context"
	"sync"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

var _ repo.CartRepository = (*CartRepository)(nil)

// CartRepository is safe for concurrent use.
type CartRepository struct {
	mu      sync.RWMutex
	records map[string][]byte
	saves   int
}

func NewCartRepository() *CartRepository {
	return &CartRepository{records: make(map[string][]byte)}
}

func (r *CartRepository) Save(ctx context.Context, key string, record []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[key] = append([]byte(nil), record...)
	r.saves++
	return nil
}

func (r *CartRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), rec...), nil
}

func (r *CartRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, key)
	return nil
}

// Saves reports how many times Save has been called.
func (r *CartRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
