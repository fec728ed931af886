package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/reconcile"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

// DefaultIdleTimeout is how long an unused session store is kept in memory.
const DefaultIdleTimeout = 30 * time.Minute

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per session, creating and rehydrating it on
// first use. Stores idle for longer than the idle timeout are dropped by
// Cleanup; their records stay in the repository.
type Registry struct {
	mu         sync.Mutex
	stores     map[string]*entry
	repo       repo.CartRepository
	reconciler *reconcile.Reconciler
	idle       time.Duration
	now        func() time.Time
	onEvict    []func(sessionID string)
	logger     *zap.SugaredLogger
}

func NewRegistry(repo repo.CartRepository, reconciler *reconcile.Reconciler, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		stores:     make(map[string]*entry),
		repo:       repo,
		reconciler: reconciler,
		idle:       DefaultIdleTimeout,
		now:        time.Now,
		logger:     logger,
	}
}

// WithIdleTimeout replaces DefaultIdleTimeout. Zero or less keeps the default.
func (r *Registry) WithIdleTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.idle = d
	}
	return r
}

// OnEvict registers fn to run for every session dropped by Cleanup or Evict.
func (r *Registry) OnEvict(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// Get returns the session's store. A new store starts rehydrating in the
// background and outlives the request that created it.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.stores[sessionID]; ok {
		e.lastSeen = r.now()
		return e.store
	}

	s := NewStore(StorageKey(sessionID), r.repo, r.reconciler, r.logger.With("session_id", sessionID))
	s.Start(context.WithoutCancel(ctx))
	r.stores[sessionID] = &entry{store: s, lastSeen: r.now()}
	return s
}

// Evict drops the in-memory store; the persisted record is kept.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	_, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	hooks := r.onEvict
	r.mu.Unlock()

	if ok {
		for _, fn := range hooks {
			fn(sessionID)
		}
	}
}

// Cleanup drops every store not used within the idle timeout and returns
// the evicted session ids.
func (r *Registry) Cleanup() []string {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idle)
	var evicted []string
	for id, e := range r.stores {
		if e.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			evicted = append(evicted, id)
		}
	}
	hooks := r.onEvict
	r.mu.Unlock()

	for _, id := range evicted {
		for _, fn := range hooks {
			fn(id)
		}
	}
	if len(evicted) > 0 {
		r.logger.Debugw("evicted idle cart sessions", "count", len(evicted))
	}
	return evicted
}

// StartCleanup runs Cleanup every interval until stop is closed.
func (r *Registry) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
