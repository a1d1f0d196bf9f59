package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange is the durable topic exchange lifecycle events go to.
const Exchange = "booking.events"

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

// ErrPublishQueueFull is returned when the broker is too slow to keep up and
// the event was dropped.
var ErrPublishQueueFull = errors.New("rabbitmq: publish queue full")

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func(url string, timeout time.Duration) (amqpChannel, io.Closer, error)

// AMQPPublisher publishes events to RabbitMQ. Publish only queues the event;
// a single goroutine sends them in order, dialing lazily and re-dialing after
// a failure, so a slow broker never holds up the caller.
type AMQPPublisher struct {
	url     string
	logger  *zap.Logger
	dial    dialFunc
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}

	// Owned by the send loop.
	conn io.Closer
	ch   amqpChannel
}

func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return newAMQPPublisher(url, logger, dialAMQP, defaultQueueSize, defaultSendTimeout)
}

func newAMQPPublisher(url string, logger *zap.Logger, dial dialFunc, queueSize int, timeout time.Duration) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AMQPPublisher{
		url:     url,
		logger:  logger,
		dial:    dial,
		timeout: timeout,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish queues e for delivery. It never blocks.
func (p *AMQPPublisher) Publish(_ context.Context, e Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("rabbitmq: publisher closed")
	}
	select {
	case p.queue <- e:
		return nil
	default:
		p.logger.Warn("rabbitmq: dropping event, queue full", zap.String("type", e.Type), zap.String("bookingId", e.BookingID))
		return ErrPublishQueueFull
	}
}

// Close stops accepting events, waits for the queued ones and releases the
// connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	for e := range p.queue {
		if err := p.send(e); err != nil {
			p.logger.Warn("rabbitmq: publish failed", zap.String("type", e.Type), zap.String("bookingId", e.BookingID), zap.Error(err))
		}
	}
	p.reset()
}

func (p *AMQPPublisher) send(e Event) error {
	msg, err := publishing(e)
	if err != nil {
		return err
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := ch.PublishWithContext(ctx, Exchange, e.Type, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

// publishing builds the message for e; the event type is the routing key.
func publishing(e Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    e.BookingID + ":" + e.Type,
		Body:         body,
	}, nil
}

func (p *AMQPPublisher) channel() (amqpChannel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	ch, conn, err := p.dial(p.url, p.timeout)
	if err != nil {
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func dialAMQP(url string, timeout time.Duration) (amqpChannel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}
	return ch, conn, nil
}
