package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer appends every order event to <Dir>/orders.log.
type Consumer struct {
	URL string
	Dir string
	Log *logrus.Logger
}

func NewConsumer(url, dir string, log *logrus.Logger) *Consumer {
	return &Consumer{URL: url, Dir: dir, Log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential back-off when the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).Warnf("order-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.Log.WithError(err).Warn("order-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
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
		c.Log.WithError(err).Warn("order-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(OrdersQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(OrdersQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.Log.WithError(err).Error("order-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message and appends it to the event log.
func (c *Consumer) Handle(body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.OrderID == 0 {
		return errors.New("event without type or order id")
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as one human-readable log line.
func FormatLine(ev OrderEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | order_id=%d | user_id=%d | service_id=%d | quantity=%d | price=%s | status=%s",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.OrderID, ev.UserID, ev.ServiceID,
		ev.Quantity, ev.Price.StringFixed(4), ev.Status)
	if ev.PreviousStatus != "" {
		fmt.Fprintf(&b, " | from=%s", ev.PreviousStatus)
	}
	if ev.SellerID != nil {
		fmt.Fprintf(&b, " | seller_id=%d", *ev.SellerID)
	}
	if ev.Refunded {
		b.WriteString(" | refunded=true")
	}
	b.WriteString("\n")
	return b.String()
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
