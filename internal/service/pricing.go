package service

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// CalculateOrderPrice multiplies the unit price by quantity and rounds to
// four decimal places.
func CalculateOrderPrice(unit decimal.Decimal, quantity int) decimal.Decimal {
	return model.RoundMoney(unit.Mul(decimal.NewFromInt(int64(quantity))))
}

// Quote is the price breakdown of an order.
type Quote struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// QuoteOrder prices quantity units of unit, minus an optional coupon. The
// net price never drops below zero.
func QuoteOrder(unit decimal.Decimal, quantity int, coupon *model.Coupon) Quote {
	q := Quote{Gross: CalculateOrderPrice(unit, quantity), Discount: decimal.Zero}
	if coupon != nil {
		q.Discount = coupon.Discount(q.Gross)
	}
	q.Net = q.Gross.Sub(q.Discount)
	if q.Net.IsNegative() {
		q.Net = decimal.Zero
	}
	return q
}
