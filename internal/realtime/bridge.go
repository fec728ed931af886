// Package realtime keeps cached server views fresh from the backend's push
// events.
package realtime

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

// Handler consumes decoded push events.
type Handler interface {
	Handle(ctx context.Context, ev domain.RealtimeEvent) error
}

// Bridge invalidates the cached views of one surface.
type Bridge struct {
	surface domain.Surface
	cache   repo.ViewCache
	logger  *zap.SugaredLogger
}

func NewBridge(surface domain.Surface, cache repo.ViewCache, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{surface: surface, cache: cache, logger: logger}
}

// Handle invalidates every view key the event affects. Unknown events are
// ignored.
func (b *Bridge) Handle(ctx context.Context, ev domain.RealtimeEvent) error {
	keys := Keys(b.surface, ev)
	if len(keys) == 0 {
		b.logger.Debugw("ignoring realtime event", "event_type", ev.EventType, "surface", b.surface)
		return nil
	}

	n, err := b.cache.Invalidate(ctx, keys...)
	if err != nil {
		b.logger.Errorw("failed to invalidate views", "event_type", ev.EventType, "keys", keys, "error", err)
		return fmt.Errorf("failed to invalidate views: %w", err)
	}

	metrics.RecordInvalidations(ev.EventType, n)
	b.logger.Infow("views invalidated", "event_type", ev.EventType, "order_id", ev.OrderID, "keys", keys, "removed", n)
	return nil
}

// Keys maps an event to the view keys it invalidates on surface.
func Keys(surface domain.Surface, ev domain.RealtimeEvent) []string {
	category, _, _ := strings.Cut(ev.EventType, ".")
	if !known(ev.EventType) {
		return nil
	}

	var keys []string
	add := func(k ...string) { keys = append(keys, k...) }
	order := func() {
		if ev.OrderID != "" {
			add(domain.OrderViewKey(ev.OrderID))
		}
	}

	switch surface {
	case domain.SurfaceCustomer:
		switch category {
		case "order", "delivery":
			add(domain.ViewOrders)
			order()
		case "payment":
			add(domain.ViewOrders)
			order()
			if ev.EventType == domain.EventPaymentRefundInitiated || ev.EventType == domain.EventPaymentRefundCompleted {
				add(domain.ViewWallet)
			}
		case "menu", "inventory":
			if ev.VendorID != "" {
				add(domain.MenuViewKey(ev.VendorID))
			}
		}

	case domain.SurfaceRider:
		switch category {
		case "delivery":
			add(domain.ViewRiderDeliveries)
			order()
			if ev.EventType == domain.EventDeliveryDelivered {
				add(domain.ViewRiderEarnings)
			}
		case "order":
			if ev.RiderID != "" || ev.EventType == domain.EventOrderCompleted {
				add(domain.ViewRiderDeliveries)
			}
			order()
		}

	case domain.SurfaceRestaurant:
		switch category {
		case "order", "delivery":
			add(domain.ViewRestaurantOrders)
			order()
		case "payment":
			add(domain.ViewRestaurantPayments)
			order()
		case "menu", "inventory":
			add(domain.ViewRestaurantMenu)
			if ev.VendorID != "" {
				add(domain.MenuViewKey(ev.VendorID))
			}
		}
	}

	return keys
}

var knownEvents = map[string]struct{}{
	domain.EventOrderCreated:           {},
	domain.EventOrderAccepted:          {},
	domain.EventOrderRejected:          {},
	domain.EventOrderUpdated:           {},
	domain.EventOrderCompleted:         {},
	domain.EventPaymentCaptured:        {},
	domain.EventPaymentFailed:          {},
	domain.EventPaymentRefundInitiated: {},
	domain.EventPaymentRefundCompleted: {},
	domain.EventDeliveryAssigned:       {},
	domain.EventDeliveryPickedUp:       {},
	domain.EventDeliveryInTransit:      {},
	domain.EventDeliveryDelivered:      {},
	domain.EventMenuUpdated:            {},
	domain.EventInventoryChanged:       {},
}

func known(eventType string) bool {
	_, ok := knownEvents[eventType]
	return ok
}
