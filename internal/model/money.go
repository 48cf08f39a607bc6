// Package model holds the domain types shared by the repository, service
// and handler layers.
package model

import "github.com/shopspring/decimal"

func init() {
	// balances and prices are rendered as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the scale of every monetary column (DECIMAL(15,4)).
const MoneyPlaces = 4

// RoundMoney rounds an amount to the storage scale.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
