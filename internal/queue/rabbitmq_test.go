package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type published struct {
	queue   string
	headers amqp.Table
}

type fakePublisher struct {
	err  error
	sent []published
}

func (p *fakePublisher) publish(_ context.Context, queueName string, _ []byte, headers amqp.Table) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{queue: queueName, headers: headers})
	return nil
}

func newTestRabbitMQ(p *fakePublisher) *RabbitMQBroker {
	return &RabbitMQBroker{
		maxRetries: 2,
		retryDelay: time.Millisecond,
		republish:  p.publish,
		logger:     zap.NewNop().Sugar(),
	}
}

func testDelivery(ack *fakeAcknowledger, retryCount int32) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Headers:      amqp.Table{headerRetryCount: retryCount},
		Body:         []byte(`{"event_type": "order_created"}`),
	}
}

var errHandler = errors.New("handler failed")

func failing(context.Context, []byte) error { return errHandler }

func TestHandleMessage_AcksHandledMessage(t *testing.T) {
	ack, p := &fakeAcknowledger{}, &fakePublisher{}
	b := newTestRabbitMQ(p)

	b.handleMessage(context.Background(), testDelivery(ack, 0), func(context.Context, []byte) error { return nil }, QueueRealtimeEvents)

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	assert.Empty(t, p.sent)
}

func TestHandleMessage_RequeuesThenAcks(t *testing.T) {
	ack, p := &fakeAcknowledger{}, &fakePublisher{}
	b := newTestRabbitMQ(p)

	b.handleMessage(context.Background(), testDelivery(ack, 0), failing, QueueRealtimeEvents)

	require.Len(t, p.sent, 1)
	assert.Equal(t, QueueRealtimeEvents, p.sent[0].queue)
	assert.Equal(t, int32(1), p.sent[0].headers[headerRetryCount])
	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
}

func TestHandleMessage_DeadLettersThenAcks(t *testing.T) {
	ack, p := &fakeAcknowledger{}, &fakePublisher{}
	b := newTestRabbitMQ(p)

	b.handleMessage(context.Background(), testDelivery(ack, 2), failing, QueueRealtimeEvents)

	require.Len(t, p.sent, 1)
	assert.Equal(t, QueueRealtimeEventsDLQ, p.sent[0].queue)
	assert.Equal(t, errHandler.Error(), p.sent[0].headers[headerError])
	assert.Equal(t, 1, ack.acks)
}

func TestHandleMessage_NacksWhenMoveFails(t *testing.T) {
	for name, retryCount := range map[string]int32{"requeue": 0, "dead letter": 2} {
		t.Run(name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			b := newTestRabbitMQ(&fakePublisher{err: errors.New("channel closed")})

			b.handleMessage(context.Background(), testDelivery(ack, retryCount), failing, QueueRealtimeEvents)

			assert.Zero(t, ack.acks)
			assert.Equal(t, 1, ack.nacks)
			assert.True(t, ack.requeue)
		})
	}
}

func TestHandleMessage_NacksOnShutdown(t *testing.T) {
	ack, p := &fakeAcknowledger{}, &fakePublisher{}
	b := newTestRabbitMQ(p)
	b.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.handleMessage(ctx, testDelivery(ack, 0), failing, QueueRealtimeEvents)

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeue)
	assert.Empty(t, p.sent)
}
