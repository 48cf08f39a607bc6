package queue

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFormatLine(t *testing.T) {
	seller := uint64(9)
	ev := OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        42,
		UserID:         7,
		ServiceID:      3,
		SellerID:       &seller,
		Quantity:       500,
		Price:          decimal.RequireFromString("2.5"),
		Status:         "canceled",
		PreviousStatus: "processing",
		Refunded:       true,
		OccurredAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t,
		"[2024-03-01T10:00:00Z] order.status_changed | order_id=42 | user_id=7 | service_id=3 | quantity=500 | price=2.5000 | status=canceled | from=processing | seller_id=9 | refunded=true\n",
		FormatLine(ev))
}

func TestConsumer_Handle(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("amqp://unused", filepath.Join(dir, "logs"), quietLogger())

	ev := NewOrderEvent(EventOrderCreated)
	ev.OrderID = 1
	ev.UserID = 2
	ev.ServiceID = 3
	ev.Quantity = 100
	ev.Price = decimal.RequireFromString("1.25")
	ev.Status = "pending"
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, c.Handle(body))
	require.NoError(t, c.Handle(body))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "orders.log"))
	require.NoError(t, err)
	assert.Equal(t, 2*len(FormatLine(ev)), len(data))
	assert.Contains(t, string(data), "order.created | order_id=1")
}

func TestConsumer_HandleRejectsBadPayloads(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir(), quietLogger())
	assert.Error(t, c.Handle([]byte("not json")))
	assert.Error(t, c.Handle([]byte(`{"type":"order.created"}`)))
}

func TestNewOrderEvent(t *testing.T) {
	a := NewOrderEvent(EventOrderCreated)
	b := NewOrderEvent(EventOrderCreated)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, EventOrderCreated, a.Type)
	assert.False(t, a.OccurredAt.IsZero())
}
