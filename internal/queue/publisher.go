package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/distributor-orders/internal/model"
)

// Publisher sends order events to RabbitMQ. It dials per call, so a
// broker outage only fails the notification that hit it.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the broker at url. Nothing is
// dialed until the first publish.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// NotifyOrderPlaced publishes the order to the order.placed queue as a
// persistent message.
func (p *Publisher) NotifyOrderPlaced(ctx context.Context, o model.Order) error {
	return p.Publish(ctx, NewOrderPlacedEvent(o))
}

// Publish declares the durable queue and sends ev as JSON.
func (p *Publisher) Publish(ctx context.Context, ev OrderPlacedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.OrderID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", OrderPlacedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
