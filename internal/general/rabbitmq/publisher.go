package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const confirmTimeout = 5 * time.Second

// Publisher sends persistent JSON messages through the client's confirmed
// publish channel.
type Publisher struct {
	client *Client
}

// NewPublisher wraps the client for publishing.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends body to the exchange under the routing key and waits for the
// broker's confirm. A message the broker cannot route or does not confirm
// within the timeout is reported as an error.
func (publisher *Publisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	client := publisher.client

	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	// one publish at a time: the confirm stream is ordered, so the confirm
	// read below must match the publish above
	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	err := ch.PublishWithContext(ctx, exchange, routingKey, true /* mandatory */, false, /* immediate */
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s/%s: %w", exchange, routingKey, err)
	}

	select {
	case c := <-confirms:
		if !c.Ack {
			return fmt.Errorf("rabbitmq: publish %s/%s not acknowledged", exchange, routingKey)
		}
		return nil
	case <-ctx.Done():
		// drain the late confirm so the stream stays aligned with the next
		// publish, then surface the timeout
		select {
		case c := <-confirms:
			if !c.Ack {
				return fmt.Errorf("rabbitmq: publish %s/%s not acknowledged", exchange, routingKey)
			}
		case <-time.After(2 * time.Second):
		}
		return ctx.Err()
	}
}
