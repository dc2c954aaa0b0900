// README: RabbitMQ connection with publisher confirms for domain events.
package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const EventsExchange = "travelbook.events"

type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

// DialRabbitMQ connects, enables confirms and declares the topic exchange events go to.
func DialRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &RabbitMQ{conn: conn, ch: ch, acks: acks}, nil
}

func (r *RabbitMQ) Channel() *amqp.Channel { return r.ch }

// NewChannel opens a separate channel, e.g. for a consumer that must not share the
// confirm-mode publishing channel.
func (r *RabbitMQ) NewChannel() (*amqp.Channel, error) {
	return r.conn.Channel()
}

func (r *RabbitMQ) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// Publish sends a persistent JSON message and waits for the broker ack.
// Calls are serialized so each confirm matches its publish.
func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ch.PublishWithContext(ctx, EventsExchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-r.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish nacked by broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}
