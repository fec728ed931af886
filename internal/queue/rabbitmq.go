package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type RabbitMQBroker struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	url        string
	maxRetries int
	retryDelay time.Duration
	republish  func(ctx context.Context, queueName string, message []byte, headers amqp.Table) error
	logger     *zap.SugaredLogger
	mu         sync.RWMutex
}

type Config struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

func NewRabbitMQBroker(cfg Config, logger *zap.SugaredLogger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// set QoS
	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	broker := &RabbitMQBroker{
		conn:       conn,
		channel:    channel,
		url:        cfg.URL,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}
	broker.republish = broker.publish

	for _, queueName := range []string{QueueRealtimeEvents, QueueRealtimeEventsDLQ} {
		if err := broker.declareQueue(queueName); err != nil {
			broker.Close()
			return nil, err
		}
	}

	return broker, nil
}

func (b *RabbitMQBroker) declareQueue(queueName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return nil
}

func (b *RabbitMQBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	return b.publish(ctx, queueName, message, nil)
}

func (b *RabbitMQBroker) publish(ctx context.Context, queueName string, message []byte, headers amqp.Table) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	err := b.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         message,
			Headers:      headers,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (b *RabbitMQBroker) Subscribe(ctx context.Context, queueName string, handler MessageHandler) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msgs, err := b.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				b.handleMessage(ctx, msg, handler, queueName)
			}
		}
	}()

	return nil
}

// handleMessage settles msg only after it was handled, requeued or
// dead-lettered. A delivery that could not be moved is nacked back onto
// its queue.
func (b *RabbitMQBroker) handleMessage(ctx context.Context, msg amqp.Delivery, handler MessageHandler, queueName string) {
	err := handler(ctx, msg.Body)
	if err == nil {
		b.ack(msg, queueName)
		return
	}

	retryCount := 0
	if count, ok := msg.Headers[headerRetryCount].(int32); ok {
		retryCount = int(count)
	}

	retry, delay := retryDecision(retryCount, b.maxRetries, b.retryDelay)
	if retry {
		select {
		case <-ctx.Done():
			b.nack(msg, queueName)
			return
		case <-time.After(delay):
		}

		// requeue with incremented retry count
		if perr := b.republish(ctx, queueName, msg.Body, amqp.Table{headerRetryCount: int32(retryCount + 1)}); perr != nil {
			b.logger.Errorw("failed to requeue message", "queue", queueName, "retry_count", retryCount, "error", perr)
			b.nack(msg, queueName)
			return
		}
		b.ack(msg, queueName)
		return
	}

	// dlq
	headers := amqp.Table{
		headerOriginalQueue: queueName,
		headerRetryCount:    int32(retryCount),
		headerError:         err.Error(),
	}
	if perr := b.republish(ctx, dlqName(queueName), msg.Body, headers); perr != nil {
		b.logger.Errorw("failed to dead-letter message", "queue", queueName, "error", perr)
		b.nack(msg, queueName)
		return
	}
	b.logger.Warnw("message moved to dead letter queue", "queue", queueName, "retry_count", retryCount, "error", err)
	b.ack(msg, queueName)
}

func (b *RabbitMQBroker) ack(msg amqp.Delivery, queueName string) {
	if err := msg.Ack(false); err != nil {
		b.logger.Errorw("failed to ack message", "queue", queueName, "error", err)
	}
}

func (b *RabbitMQBroker) nack(msg amqp.Delivery, queueName string) {
	if err := msg.Nack(false, true); err != nil {
		b.logger.Errorw("failed to nack message", "queue", queueName, "error", err)
	}
}

func (b *RabbitMQBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
