package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

const (
	publishBuffer  = 256
	publishTimeout = 5 * time.Second
	redialBackoff  = 2 * time.Second
)

// ErrEventDropped is returned by Notify when the publish buffer is full.
var ErrEventDropped = errors.New("rabbitmq publish buffer full, event dropped")

var errPublisherClosed = errors.New("rabbitmq publisher closed")

// Publisher sends domain events to a fanout exchange. Every API instance
// binds its own queue to the exchange; Queue is a durable queue for
// downstream mail and analytics workers.
//
// Notify only enqueues. A single worker goroutine owns the connection, so a
// slow or silent broker never holds up the caller.
type Publisher struct {
	url      string
	exchange string
	queue    string
	timeout  time.Duration

	events    chan models.Event
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the worker until done is closed
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url, exchange, queue string) *Publisher {
	return newPublisher(url, exchange, queue, publishBuffer, publishTimeout)
}

func newPublisher(url, exchange, queue string, buffer int, timeout time.Duration) *Publisher {
	p := &Publisher{
		url:      url,
		exchange: exchange,
		queue:    queue,
		timeout:  timeout,
		events:   make(chan models.Event, buffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.quit:
			p.drain()
			return
		case event := <-p.events:
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			p.publish(ctx, event)
			cancel()
		}
	}
}

// drain makes one bounded attempt at whatever is still buffered on shutdown.
func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	for {
		select {
		case event := <-p.events:
			if ctx.Err() != nil {
				metrics.RecordEvent("rabbitmq", "dropped")
				continue
			}
			p.publish(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event models.Event) {
	msg, err := encodeEvent(event)
	if err != nil {
		metrics.RecordEvent("rabbitmq", "error")
		utils.ErrorLogger.Errorf("Encoding %s event: %v", event.Type, err)
		return
	}

	ch, err := p.channel(ctx)
	if err != nil {
		metrics.RecordEvent("rabbitmq", "error")
		utils.ErrorLogger.Warnf("Event %s not published: %v", event.Type, err)
		return
	}
	if err := ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		metrics.RecordEvent("rabbitmq", "error")
		utils.ErrorLogger.Warnf("Event %s not published: rabbitmq publish: %v", event.Type, err)
		return
	}
	metrics.RecordEvent("rabbitmq", "ok")
	utils.InfoLogger.Debugf("Published %s to %s", event.Type, p.exchange)
}

// channel returns an open channel, dialing again if the broker dropped us.
// The dial and handshake are bounded by ctx. After a failed dial the broker
// is left alone for redialBackoff.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		if time.Now().Before(p.retryAt) {
			return nil, errors.New("rabbitmq unavailable, waiting to redial")
		}
		conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: contextDialer(ctx)})
		if err != nil {
			p.retryAt = time.Now().Add(redialBackoff)
			return nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declareTopology(ch, p.exchange, p.queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

// contextDialer dials within ctx and carries its deadline over to the AMQP
// handshake; the client clears the deadline once the connection is open.
func contextDialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if queue == "" {
		return nil
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}

// Notify implements services.Notifier. It never blocks: the event is queued
// for the worker, or dropped with ErrEventDropped when the buffer is full.
func (p *Publisher) Notify(_ context.Context, event models.Event) error {
	select {
	case <-p.quit:
		return errPublisherClosed
	default:
	}

	select {
	case p.events <- event:
		return nil
	default:
		metrics.RecordEvent("rabbitmq", "dropped")
		return ErrEventDropped
	}
}

// Close stops the worker after it has tried to flush the buffer, then closes
// the connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.quit) })
	<-p.done

	var errs []error
	if p.ch != nil {
		errs = append(errs, ignoreClosed(p.ch.Close()))
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, ignoreClosed(p.conn.Close()))
		p.conn = nil
	}
	return errors.Join(errs...)
}

func encodeEvent(event models.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}, nil
}

func decodeEvent(body []byte) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return models.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Type == "" {
		return models.Event{}, errors.New("event without type")
	}
	return event, nil
}

func ignoreClosed(err error) error {
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
