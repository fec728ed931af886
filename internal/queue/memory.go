package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

var _ Broker = (*MemoryBroker)(nil)

// MemoryBroker is an in-process Broker with the same retry and dead letter
// behaviour as RabbitMQBroker. Messages are lost on restart.
type MemoryBroker struct {
	mu         sync.Mutex
	queues     map[string]chan delivery
	maxRetries int
	retryDelay time.Duration
	logger     *zap.SugaredLogger
}

type delivery struct {
	body    []byte
	retries int
}

func NewMemoryBroker(maxRetries int, retryDelay time.Duration, logger *zap.SugaredLogger) *MemoryBroker {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &MemoryBroker{
		queues:     make(map[string]chan delivery),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

func (b *MemoryBroker) queue(name string) chan delivery {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		q = make(chan delivery, 256)
		b.queues[name] = q
	}
	return q
}

func (b *MemoryBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	return b.push(ctx, queueName, delivery{body: append([]byte(nil), message...)})
}

func (b *MemoryBroker) push(ctx context.Context, queueName string, d delivery) error {
	select {
	case b.queue(queueName) <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Subscribe(ctx context.Context, queueName string, handler MessageHandler) error {
	q := b.queue(queueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-q:
				b.handle(ctx, queueName, d, handler)
			}
		}
	}()

	return nil
}

func (b *MemoryBroker) handle(ctx context.Context, queueName string, d delivery, handler MessageHandler) {
	err := handler(ctx, d.body)
	if err == nil {
		return
	}

	retry, delay := retryDecision(d.retries, b.maxRetries, b.retryDelay)
	if !retry {
		b.logger.Warnw("message moved to dead letter queue", "queue", queueName, "retry_count", d.retries, "error", err)
		_ = b.push(ctx, dlqName(queueName), delivery{body: d.body, retries: d.retries})
		return
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			_ = b.push(ctx, queueName, delivery{body: d.body, retries: d.retries + 1})
		}
	}()
}

// Len reports how many messages wait on queueName.
func (b *MemoryBroker) Len(queueName string) int {
	return len(b.queue(queueName))
}

func (b *MemoryBroker) Close() error {
	return nil
}
