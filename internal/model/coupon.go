package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID            uint64           `json:"id"`
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount"`
	UsageLimit    *int             `json:"usage_limit"`
	UsedCount     int              `json:"used_count"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until"`
	Status        CatalogStatus    `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// UsableAt reports whether the coupon is active, inside its validity
// window and under its usage limit at time now.
func (c *Coupon) UsableAt(now time.Time) bool {
	if c.Status != CatalogActive {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// Discount returns the amount taken off price. Percentage discounts are
// capped by MaxDiscount when one is set, and no discount exceeds price.
func (c *Coupon) Discount(price decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		d = price.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && c.MaxDiscount.IsPositive() && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
	default:
		d = c.DiscountValue
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(price) {
		d = price
	}
	return RoundMoney(d)
}
