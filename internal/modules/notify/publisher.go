// README: Publishes order events to the RabbitMQ events exchange.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travelbook/internal/logger"
	"travelbook/internal/modules/order"
)

// Broker is satisfied by *infra.RabbitMQ.
type Broker interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

type Publisher struct {
	broker  Broker
	log     logger.ILogger
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(broker Broker, log logger.ILogger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{broker: broker, log: log, timeout: 5 * time.Second, now: time.Now}
}

// OrderCreated publishes the event and waits for the broker to confirm it. The
// order is already committed, so a failure is reported but never undoes it.
func (p *Publisher) OrderCreated(ctx context.Context, c *order.Confirmation) error {
	body, err := json.Marshal(OrderCreatedFrom(c, p.now()))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.broker.Publish(ctx, RoutingOrderCreated, body); err != nil {
		p.log.Warning("publish order.created failed", logger.Int64("order_id", int64(c.OrderID)), logger.Error(err))
		return fmt.Errorf("publish %s: %w", RoutingOrderCreated, err)
	}
	p.log.Debug("order.created published", logger.Int64("order_id", int64(c.OrderID)))
	return nil
}
