// Package amqp publishes and consumes ledger sync messages over RabbitMQ.
// The web process publishes after each local write; the worker consumes
// and mirrors entries to the spreadsheet.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	syncRoutingKey   = "entry.sync"
	deleteRoutingKey = "entry.delete"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{syncRoutingKey, deleteRoutingKey} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue for %s: %w", key, err)
		}
	}

	return nil
}

// PublishEntrySync publishes a sync message for one local entry.
func (c *Client) PublishEntrySync(ctx context.Context, rowID int64) error {
	msg := NewEntrySyncMessage(rowID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, syncRoutingKey, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published entry sync message",
		"row_id", rowID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishEntryDelete publishes a delete message for one local entry.
func (c *Client) PublishEntryDelete(ctx context.Context, rowID int64, table, entryID string) error {
	msg := NewEntryDeleteMessage(rowID, table, entryID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, deleteRoutingKey, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published entry delete message",
		"row_id", rowID,
		"table", table)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeMessages blocks, dispatching deliveries to the handlers until the
// context is canceled. Handler errors nack with requeue; undecodable
// messages are dropped.
func (c *Client) ConsumeMessages(
	ctx context.Context,
	onSync func(context.Context, *EntrySyncMessage) error,
	onDelete func(context.Context, *EntryDeleteMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ledger sync messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, onSync, onDelete)
		}
	}
}

func (c *Client) dispatch(
	ctx context.Context,
	delivery amqp091.Delivery,
	onSync func(context.Context, *EntrySyncMessage) error,
	onDelete func(context.Context, *EntryDeleteMessage) error,
) {
	var err error
	switch delivery.RoutingKey {
	case syncRoutingKey:
		msg, derr := EntrySyncMessageFromJSON(delivery.Body)
		if derr != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal sync message", "error", derr)
			_ = delivery.Nack(false, false)
			return
		}
		err = onSync(ctx, msg)
	case deleteRoutingKey:
		msg, derr := EntryDeleteMessageFromJSON(delivery.Body)
		if derr != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal delete message", "error", derr)
			_ = delivery.Nack(false, false)
			return
		}
		err = onDelete(ctx, msg)
	default:
		slog.WarnContext(ctx, "Unknown routing key, dropping message", "routing_key", delivery.RoutingKey)
		_ = delivery.Nack(false, false)
		return
	}

	if err != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"routing_key", delivery.RoutingKey,
			"error", err)
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
