package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"product-inventory/internal/products"
	"product-inventory/internal/products/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "inventory-stock-watcher"

var ErrDeliveriesClosed = errors.New("deliveries channel closed")

type EventHandler interface {
	Handle(ctx context.Context, event products.ProductEvent) error
}

// Consumer feeds product events from a durable queue into a handler.
type Consumer struct {
	channel *amqp.Channel
	queue   string
	handler EventHandler
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	ch, err := messaging.DeclareQueue(conn, queue)
	if err != nil {
		return nil, err
	}

	// One unacked delivery at a time keeps stock transitions in order.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		handler: handler,
		logger:  logger,
	}, nil
}

// Listen consumes until ctx is cancelled, which returns nil. A lost broker
// connection closes the deliveries channel and returns ErrDeliveriesClosed.
func (c *Consumer) Listen(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}
	return c.consume(ctx, deliveries)
}

func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("queue %q: %w", c.queue, ErrDeliveriesClosed)
			}
			c.deliver(ctx, d)
		}
	}
}

// deliver drops payloads the handler rejects instead of requeueing them.
func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	if err := dispatch(ctx, c.handler, d.Body); err != nil {
		c.logger.Error("handle product event failed",
			"delivery_tag", d.DeliveryTag,
			"type", d.Type,
			"error", err,
		)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func dispatch(ctx context.Context, handler EventHandler, body []byte) error {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	return handler.Handle(ctx, event)
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
