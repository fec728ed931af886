package queue

import (
	"context"
	"time"
)

type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Close() error
}

type MessageHandler func(ctx context.Context, message []byte) error

const (
	QueueRealtimeEvents    = "realtime-events"
	QueueRealtimeEventsDLQ = "realtime-events-dlq"
)

const (
	headerRetryCount    = "x-retry-count"
	headerOriginalQueue = "x-original-queue"
	headerError         = "x-error"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// retryDecision says what to do with a message whose handler failed for
// the retryCount-th time: redeliver after delay, or dead-letter it.
func retryDecision(retryCount, maxRetries int, base time.Duration) (retry bool, delay time.Duration) {
	if retryCount >= maxRetries {
		return false, 0
	}
	// base, 2*base, 4*base...
	return true, base * time.Duration(1<<retryCount)
}

func dlqName(queueName string) string {
	return queueName + "-dlq"
}
