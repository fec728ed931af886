package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/payment"
)

func newTestRegistry(orders OrderCreator) (*Registry, *time.Time) {
	logger := zap.NewNop().Sugar()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(orders, payment.NewSequencer(&fakeGateway{}, logger), logger).
		WithIdleTimeout(time.Minute).
		WithHydrationPolicy(fastPolicy)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_GetReusesOrchestratorForSameCart(t *testing.T) {
	r, _ := newTestRegistry(&fakeOrders{})
	c := newCart(t, "V")

	o := r.Get("s1", c)
	assert.Same(t, o, r.Get("s1", c))
	assert.Equal(t, fastPolicy, o.hydration)
}

func TestRegistry_GetReplacesOrchestratorForNewCart(t *testing.T) {
	r, _ := newTestRegistry(&fakeOrders{})

	o := r.Get("s1", newCart(t, "V"))
	o.SetAddress("addr-1")

	fresh := r.Get("s1", newCart(t, "V"))
	assert.NotSame(t, o, fresh)
	assert.Empty(t, fresh.Form().AddressID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CleanupEvictsIdleSessions(t *testing.T) {
	r, now := newTestRegistry(&fakeOrders{})

	r.Get("idle", newCart(t, "V"))
	active := newCart(t, "V")
	r.Get("active", active)

	*now = now.Add(45 * time.Second)
	r.Get("active", active)
	assert.Equal(t, 0, r.Cleanup())

	*now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.Cleanup())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_KeepsInFlightSubmission(t *testing.T) {
	orders := &fakeOrders{called: make(chan struct{}, 1), release: make(chan struct{})}
	r, now := newTestRegistry(orders)

	o := r.Get("s1", newCart(t, "V"))
	o.ApplyForm(validForm(domain.PaymentCash))

	done := make(chan error, 1)
	go func() {
		_, err := o.HandleSubmit(context.Background())
		done <- err
	}()
	<-orders.called

	*now = now.Add(time.Hour)
	assert.Equal(t, 0, r.Cleanup())
	r.Discard("s1")

	// a rebuilt cart store must not open a second attempt
	again := r.Get("s1", newCart(t, "V"))
	require.Same(t, o, again)
	_, err := again.HandleSubmit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(orders.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.calls())

	r.Discard("s1")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_IdleTimeoutDefault(t *testing.T) {
	r := NewRegistry(&fakeOrders{}, nil, zap.NewNop().Sugar()).WithIdleTimeout(-time.Second)
	assert.Equal(t, DefaultIdleTimeout, r.idle)
}
