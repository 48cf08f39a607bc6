package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type balanceStore interface {
	LockBalanceTx(ctx context.Context, tx *sql.Tx, userID uint64) (decimal.Decimal, error)
	SetBalanceTx(ctx context.Context, tx *sql.Tx, userID uint64, balance decimal.Decimal) error
}

type ledgerStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
}

// Entry describes one balance movement. Amount is the unsigned magnitude;
// the sign follows from Type.
type Entry struct {
	UserID      uint64
	Type        model.TransactionType
	Amount      decimal.Decimal
	OrderID     *uint64
	Description string
	CreatedBy   *uint64
}

// Ledger applies balance changes. Every change locks the user row, writes
// the new balance and appends the matching transaction row in the same
// database transaction.
type Ledger struct {
	tx    TxRunner
	users balanceStore
	rows  ledgerStore
}

func NewLedger(tx TxRunner, users balanceStore, rows ledgerStore) *Ledger {
	return &Ledger{tx: tx, users: users, rows: rows}
}

// nextBalance returns the signed amount and resulting balance of applying
// amount of type typ to before. Debits may not overdraw the balance.
func nextBalance(before decimal.Decimal, typ model.TransactionType, amount decimal.Decimal) (signed, after decimal.Decimal, err error) {
	amount = model.RoundMoney(amount)
	if amount.IsNegative() {
		return decimal.Zero, before, ErrInvalidAmount
	}
	signed = amount
	if typ.Debits() {
		signed = amount.Neg()
	}
	after = before.Add(signed)
	if after.IsNegative() {
		return decimal.Zero, before, &InsufficientBalanceError{Required: amount, Available: before}
	}
	return signed, after, nil
}

// ApplyTx performs e inside an existing transaction.
func (l *Ledger) ApplyTx(ctx context.Context, tx *sql.Tx, e Entry) (*model.Transaction, error) {
	before, err := l.users.LockBalanceTx(ctx, tx, e.UserID)
	if err != nil {
		return nil, err
	}
	signed, after, err := nextBalance(before, e.Type, e.Amount)
	if err != nil {
		return nil, err
	}
	if err := l.users.SetBalanceTx(ctx, tx, e.UserID, after); err != nil {
		return nil, err
	}
	t := &model.Transaction{
		UserID:        e.UserID,
		Type:          e.Type,
		Amount:        signed,
		BalanceBefore: before,
		BalanceAfter:  after,
		OrderID:       e.OrderID,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
	}
	if err := l.rows.InsertTx(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Post performs e in its own transaction. Zero and negative amounts are
// rejected.
func (l *Ledger) Post(ctx context.Context, e Entry) (*model.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var out *model.Transaction
	err := l.tx.InTx(ctx, func(tx *sql.Tx) error {
		t, err := l.ApplyTx(ctx, tx, e)
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
