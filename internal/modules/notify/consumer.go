// README: Consumes order events and e-mails travelers their confirmation.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"travelbook/internal/infra"
	"travelbook/internal/logger"
)

const notificationsQueue = "travelbook.notifications"

var errPoison = errors.New("undecodable message")

type Consumer struct {
	mq       *infra.RabbitMQ
	mailer   Mailer
	log      logger.ILogger
	prefetch int
}

func NewConsumer(mq *infra.RabbitMQ, mailer Mailer, log logger.ILogger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{mq: mq, mailer: mailer, log: log, prefetch: 5}
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	ch, err := c.mq.NewChannel()
	if err != nil {
		return fmt.Errorf("consumer channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(notificationsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", notificationsQueue, err)
	}
	if err := ch.QueueBind(notificationsQueue, RoutingOrderCreated, infra.EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", notificationsQueue, err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(notificationsQueue, "travelbook-notify", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.log.Info("notification consumer started", logger.String("queue", notificationsQueue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("notification channel closed")
			}
			c.deliver(d)
		}
	}
}

func (c *Consumer) deliver(d amqp.Delivery) {
	err := c.Handle(d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errPoison):
		c.log.Error("dropping notification", logger.Error(err))
		_ = d.Nack(false, false)
	default:
		// one redelivery, then drop
		c.log.Warning("notification failed", logger.Bool("redelivered", d.Redelivered), logger.Error(err))
		_ = d.Nack(false, !d.Redelivered)
	}
}

// Handle decodes one event and sends the confirmation mail.
func (c *Consumer) Handle(body []byte) error {
	var ev OrderCreated
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if ev.TravelerEmail == "" {
		c.log.Info("traveler has no email; skipping", logger.Int64("order_id", int64(ev.OrderID)))
		return nil
	}
	html, err := renderConfirmation(ev)
	if err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if err := c.mailer.Send([]string{ev.TravelerEmail}, confirmationSubject, html); err != nil {
		return err
	}
	c.log.Info("confirmation mailed", logger.Int64("order_id", int64(ev.OrderID)))
	return nil
}
