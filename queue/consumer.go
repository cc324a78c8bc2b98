package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

type Handler func(ctx context.Context, event models.Event) error

// Consumer binds a private, auto-deleted queue to the events exchange so each
// API instance sees every event, and hands them to a Handler.
type Consumer struct {
	url      string
	exchange string
	handler  Handler

	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(url, exchange string, handler Handler) *Consumer {
	return &Consumer{url: url, exchange: exchange, handler: handler}
}

// Start runs the reconnect loop in the background until Stop is called.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

func (c *Consumer) run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.DialConfig(c.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
		if err != nil {
			utils.ErrorLogger.Warnf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		utils.ErrorLogger.Warnf("event-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		utils.ErrorLogger.Warnf("event-consumer: set QoS failed: %v", err)
	}
	if err := declareTopology(ch, c.exchange, ""); err != nil {
		return err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	utils.InfoLogger.Printf("event-consumer: listening on %s", c.exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := decodeEvent(d.Body)
	if err == nil {
		err = c.handler(ctx, event)
	}
	if err != nil {
		utils.ErrorLogger.Warnf("event-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // no requeue, avoids tight redelivery loops
		return
	}
	_ = d.Ack(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
