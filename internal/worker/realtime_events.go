package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/queue"
	"github.com/vikram583135/platepal2.o-sub000/internal/realtime"
)

// RealtimeEventWorker feeds push events from the broker into a bridge.
type RealtimeEventWorker struct {
	handler realtime.Handler
	broker  queue.Broker
	logger  *zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRealtimeEventWorker(
	handler realtime.Handler,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *RealtimeEventWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &RealtimeEventWorker{
		handler: handler,
		broker:  broker,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *RealtimeEventWorker) Start() error {
	w.logger.Info("starting realtime event worker")

	return w.broker.Subscribe(w.ctx, queue.QueueRealtimeEvents, w.handleMessage)
}

func (w *RealtimeEventWorker) Stop() {
	w.logger.Info("stopping realtime event worker")
	w.cancel()
}

func (w *RealtimeEventWorker) handleMessage(ctx context.Context, message []byte) error {
	event, err := realtime.ParseEvent(message)
	if err != nil {
		// malformed events are never going to succeed, drop them
		w.logger.Warnw("dropping malformed realtime event", "bytes", len(message), "error", err)
		return nil
	}

	w.logger.Debugw("processing realtime event", "event_type", event.EventType, "order_id", event.OrderID)

	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Errorw("failed to process realtime event", "event_type", event.EventType, "order_id", event.OrderID, "error", err)
		return fmt.Errorf("failed to process realtime event: %w", err)
	}

	return nil
}
