package checkout

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

// DefaultIdleTimeout is how long an untouched checkout session is kept.
const DefaultIdleTimeout = 30 * time.Minute

type session struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry keeps one orchestrator per session so that selections and the
// in-flight guard survive between requests. An orchestrator with a
// submission in flight is never dropped.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*session
	orders    OrderCreator
	payments  PaymentRunner
	idle      time.Duration
	hydration retry.Policy
	now       func() time.Time
	logger    *zap.SugaredLogger
}

func NewRegistry(orders OrderCreator, payments PaymentRunner, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		sessions:  make(map[string]*session),
		orders:    orders,
		payments:  payments,
		idle:      DefaultIdleTimeout,
		hydration: retry.HydrationPolicy,
		now:       time.Now,
		logger:    logger,
	}
}

// WithHydrationPolicy sets the hydration gate of every orchestrator created
// from now on.
func (r *Registry) WithHydrationPolicy(p retry.Policy) *Registry {
	r.hydration = p
	return r
}

// WithIdleTimeout replaces DefaultIdleTimeout. Zero or less keeps the default.
func (r *Registry) WithIdleTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.idle = d
	}
	return r
}

// Get returns the session's orchestrator, creating it over cart. An
// orchestrator bound to another cart store is replaced.
func (r *Registry) Get(sessionID string, cart Cart) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok && (s.orchestrator.cart == cart || s.orchestrator.InFlight()) {
		s.lastSeen = r.now()
		return s.orchestrator
	}
	o := NewOrchestrator(cart, r.orders, r.payments, r.logger.With("session_id", sessionID)).WithHydrationPolicy(r.hydration)
	r.sessions[sessionID] = &session{orchestrator: o, lastSeen: r.now()}
	return o
}

// Discard drops the session's orchestrator and its last attempt. It is a
// no-op while a submission is in flight.
func (r *Registry) Discard(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok && !s.orchestrator.InFlight() {
		delete(r.sessions, sessionID)
	}
}

// Cleanup drops idle orchestrators and returns how many were dropped.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) && !s.orchestrator.InFlight() {
			delete(r.sessions, id)
			n++
		}
	}
	return n
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
				if n := r.Cleanup(); n > 0 {
					r.logger.Debugw("evicted idle checkout sessions", "count", n)
				}
			}
		}
	}()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
