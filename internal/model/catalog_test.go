package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestService_PriceFor(t *testing.T) {
	s := Service{Price: decimal.RequireFromString("0.05"), ResellerPrice: decimal.RequireFromString("0.04")}

	assert.True(t, s.PriceFor(RoleSeller).Equal(s.ResellerPrice))
	assert.True(t, s.PriceFor(RoleClient).Equal(s.Price))
	assert.True(t, s.PriceFor(RoleAdmin).Equal(s.Price))
	assert.True(t, s.PriceFor("").Equal(s.Price))

	view := s.CatalogView(RoleSeller)
	assert.True(t, view.Price.Equal(s.ResellerPrice))
}

func TestService_AcceptsQuantity(t *testing.T) {
	s := Service{MinQuantity: 100, MaxQuantity: 1000}
	assert.True(t, s.AcceptsQuantity(100))
	assert.True(t, s.AcceptsQuantity(1000))
	assert.False(t, s.AcceptsQuantity(99))
	assert.False(t, s.AcceptsQuantity(1001))
}

func TestStatusAfterMessage(t *testing.T) {
	assert.Equal(t, TicketOpen, StatusAfterMessage(TicketClosed, true))
	assert.Equal(t, TicketOpen, StatusAfterMessage(TicketClosed, false))
	assert.Equal(t, TicketAnswered, StatusAfterMessage(TicketOpen, true))
	assert.Equal(t, TicketOpen, StatusAfterMessage(TicketOpen, false))
	assert.Equal(t, TicketAnswered, StatusAfterMessage(TicketAnswered, false))
}
