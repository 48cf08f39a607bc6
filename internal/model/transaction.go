package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxOrder       TransactionType = "order"
	TxRefund      TransactionType = "refund"
	TxAdminAdd    TransactionType = "admin_add"
	TxAdminRemove TransactionType = "admin_remove"
)

// ParseTransactionType validates a type filter or adjustment kind.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(s); t {
	case TxDeposit, TxOrder, TxRefund, TxAdminAdd, TxAdminRemove:
		return t, true
	}
	return "", false
}

// Debits reports whether rows of this type take money from the user.
func (t TransactionType) Debits() bool { return t == TxOrder || t == TxAdminRemove }

// Transaction is one immutable ledger row. Amount is signed: debits are
// negative. BalanceAfter always equals BalanceBefore + Amount.
type Transaction struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OrderID       *uint64         `json:"order_id"`
	Description   string          `json:"description"`
	CreatedBy     *uint64         `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}
