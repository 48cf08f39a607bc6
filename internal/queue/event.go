// Package queue defines the order event payloads exchanged over RabbitMQ
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrdersQueue is the durable queue carrying order lifecycle events.
const OrdersQueue = "orders.events"

// Event types published on OrdersQueue.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order is placed or changes status. It
// carries enough for consumers to log or notify without querying MySQL.
type OrderEvent struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	OrderID        uint64          `json:"order_id"`
	UserID         uint64          `json:"user_id"`
	ServiceID      uint64          `json:"service_id"`
	SellerID       *uint64         `json:"seller_id,omitempty"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Refunded       bool            `json:"refunded,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewOrderEvent stamps a fresh event id and time.
func NewOrderEvent(typ string) OrderEvent {
	return OrderEvent{ID: uuid.NewString(), Type: typ, OccurredAt: time.Now().UTC()}
}
