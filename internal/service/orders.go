package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/queue"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) ([]byte, error)
}

// OrderService serves order detail views through the view cache and
// announces orders placed through checkout.
type OrderService struct {
	orders OrderFetcher
	views  repo.ViewCache
	broker queue.Broker
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewOrderService(
	orders OrderFetcher,
	views repo.ViewCache,
	broker queue.Broker,
	ttl time.Duration,
	logger *zap.SugaredLogger,
) *OrderService {
	return &OrderService{
		orders: orders,
		views:  views,
		broker: broker,
		ttl:    ttl,
		logger: logger,
	}
}

// GetOrder returns the order document, from the cache when possible.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	key := domain.OrderViewKey(orderID)

	cached, err := s.views.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		// cache trouble should not hide the order
		s.logger.Warnw("failed to read order view from cache", "order_id", orderID, "error", err)
	}

	doc, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.views.Set(ctx, key, doc, s.ttl); err != nil {
		s.logger.Warnw("failed to cache order view", "order_id", orderID, "error", err)
	}

	return doc, nil
}

// AnnounceOrder publishes an order.created event so that cached order
// lists refresh without waiting for the backend's push.
func (s *OrderService) AnnounceOrder(ctx context.Context, orderID, vendorID, userID string) error {
	if s.broker == nil {
		return nil
	}

	event := domain.RealtimeEvent{
		EventType: domain.EventOrderCreated,
		OrderID:   orderID,
		VendorID:  vendorID,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueRealtimeEvents, eventBytes); err != nil {
		s.logger.Errorw("failed to publish order event", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.logger.Infow("order event queued", "order_id", orderID, "event_type", event.EventType)

	return nil
}
