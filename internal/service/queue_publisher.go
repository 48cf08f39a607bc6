package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/smm-webpanel/internal/queue"
)

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event queue.OrderEvent) error
}

// dialTimeout bounds how long a request can wait on an unreachable broker.
const dialTimeout = 2 * time.Second

// QueuePublisher publishes order events to the durable orders queue. It
// dials per message; event volume follows order volume, which is low.
type QueuePublisher struct {
	url string
}

func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{url: url}
}

// Publish sends event as a persistent JSON message. Errors carry the
// failing step; logging is left to the caller.
func (p *QueuePublisher) Publish(ctx context.Context, event queue.OrderEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return errors.Wrap(err, "rabbitmq dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.OrdersQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "rabbitmq queue declare")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return errors.Wrap(ch.PublishWithContext(ctx, "", queue.OrdersQueue, false, false, pub), "rabbitmq publish")
}

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.OrderEvent) error { return nil }
