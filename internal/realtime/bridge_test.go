package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/cache"
	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name    string
		surface domain.Surface
		ev      domain.RealtimeEvent
		want    []string
	}{
		{"customer order", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: domain.EventOrderAccepted, OrderID: "7"}, []string{"orders", "order:7"}},
		{"customer refund", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: domain.EventPaymentRefundCompleted, OrderID: "7"}, []string{"orders", "order:7", "wallet"}},
		{"customer capture", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: domain.EventPaymentCaptured, OrderID: "7"}, []string{"orders", "order:7"}},
		{"customer menu", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: domain.EventMenuUpdated, VendorID: "V"}, []string{"menu:V"}},
		{"customer menu without vendor", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: domain.EventInventoryChanged}, nil},
		{"rider delivered", domain.SurfaceRider, domain.RealtimeEvent{EventType: domain.EventDeliveryDelivered, OrderID: "7"}, []string{"rider:deliveries", "order:7", "rider:earnings"}},
		{"rider ignores payments", domain.SurfaceRider, domain.RealtimeEvent{EventType: domain.EventPaymentCaptured, OrderID: "7"}, nil},
		{"rider order without rider", domain.SurfaceRider, domain.RealtimeEvent{EventType: domain.EventOrderUpdated, OrderID: "7"}, []string{"order:7"}},
		{"restaurant payment", domain.SurfaceRestaurant, domain.RealtimeEvent{EventType: domain.EventPaymentFailed, OrderID: "7"}, []string{"restaurant:payments", "order:7"}},
		{"restaurant inventory", domain.SurfaceRestaurant, domain.RealtimeEvent{EventType: domain.EventInventoryChanged, VendorID: "V"}, []string{"restaurant:menu", "menu:V"}},
		{"unknown event", domain.SurfaceCustomer, domain.RealtimeEvent{EventType: "order.teleported", OrderID: "7"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keys(tt.surface, tt.ev))
		})
	}
}

func TestBridge_Handle(t *testing.T) {
	ctx := context.Background()
	views := cache.NewMemoryViewCache()
	require.NoError(t, views.Set(ctx, "order:7", []byte(`{}`), time.Minute))
	require.NoError(t, views.Set(ctx, "orders", []byte(`[]`), time.Minute))
	require.NoError(t, views.Set(ctx, "wallet", []byte(`{}`), time.Minute))

	b := NewBridge(domain.SurfaceCustomer, views, zap.NewNop().Sugar())
	require.NoError(t, b.Handle(ctx, domain.RealtimeEvent{EventType: domain.EventOrderCompleted, OrderID: "7"}))

	_, err := views.Get(ctx, "order:7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = views.Get(ctx, "orders")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = views.Get(ctx, "wallet")
	assert.NoError(t, err)

	assert.NoError(t, b.Handle(ctx, domain.RealtimeEvent{EventType: "chat.message"}))
}

type brokenCache struct{ cache.MemoryViewCache }

func (*brokenCache) Invalidate(context.Context, ...string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestBridge_HandleCacheError(t *testing.T) {
	b := NewBridge(domain.SurfaceRestaurant, &brokenCache{}, zap.NewNop().Sugar())
	err := b.Handle(context.Background(), domain.RealtimeEvent{EventType: domain.EventOrderCreated, OrderID: "1"})
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type": "Order.Accepted", "data": {"order_id": 12, "restaurant_id": "V", "timestamp": "2024-05-01T10:00:00Z"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventOrderAccepted, ev.EventType)
	assert.Equal(t, "12", ev.OrderID)
	assert.Equal(t, "V", ev.VendorID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), ev.Timestamp.UTC())

	ev, err = ParseEvent([]byte(`{"event_type": "delivery.assigned", "payload": {"order": {"id": "9", "rider_id": "r1"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "9", ev.OrderID)
	assert.Equal(t, "r1", ev.RiderID)
	assert.False(t, ev.Timestamp.IsZero())

	for _, bad := range []string{`not json`, `[1,2]`, `{"order_id": 1}`} {
		_, err := ParseEvent([]byte(bad))
		assert.ErrorIs(t, err, ErrMalformedEvent, bad)
	}
}
