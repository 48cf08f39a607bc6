package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCanceled, true},
		{OrderProcessing, OrderInProgress, true},
		{OrderProcessing, OrderPending, false},
		{OrderInProgress, OrderCompleted, true},
		{OrderInProgress, OrderProcessing, false},
		{OrderCompleted, OrderRefunded, true},
		{OrderCompleted, OrderCanceled, false},
		{OrderPartial, OrderRefunded, true},
		{OrderCanceled, OrderPending, false},
		{OrderCanceled, OrderRefunded, false},
		{OrderRefunded, OrderCompleted, false},
		{OrderRefunded, OrderRefunded, true},
		{OrderCompleted, OrderCompleted, true},
		{OrderStatus("bogus"), OrderStatus("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, OrderInProgress, st)

	_, ok = ParseOrderStatus("done")
	assert.False(t, ok)
}

func TestOrderStatus_Refunds(t *testing.T) {
	assert.True(t, OrderCanceled.Refunds())
	assert.True(t, OrderRefunded.Refunds())
	assert.False(t, OrderPartial.Refunds())
	assert.False(t, OrderCompleted.Refunds())
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, OrderScope{}, ScopeFor(1, RoleAdmin))
	assert.Equal(t, OrderScope{SellerID: 2}, ScopeFor(2, RoleSeller))
	assert.Equal(t, OrderScope{ClientID: 3}, ScopeFor(3, RoleClient))
}
