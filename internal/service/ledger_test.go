package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

func TestNextBalance(t *testing.T) {
	tests := []struct {
		name       string
		before     string
		typ        model.TransactionType
		amount     string
		wantSigned string
		wantAfter  string
		wantErr    error
	}{
		{"deposit", "10", model.TxDeposit, "5", "5", "15", nil},
		{"refund", "0", model.TxRefund, "2.5", "2.5", "2.5", nil},
		{"admin add", "1", model.TxAdminAdd, "0.00005", "0.0001", "1.0001", nil},
		{"order debit", "10", model.TxOrder, "4", "-4", "6", nil},
		{"debit to zero", "4", model.TxOrder, "4", "-4", "0", nil},
		{"overdraw", "3", model.TxOrder, "4", "0", "3", ErrInsufficientBalance},
		{"admin remove overdraw", "3", model.TxAdminRemove, "3.0001", "0", "3", ErrInsufficientBalance},
		{"negative amount", "3", model.TxDeposit, "-1", "0", "3", ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, after, err := nextBalance(d(tt.before), tt.typ, d(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, d(tt.wantSigned).Equal(signed), "signed %s", signed)
			assert.True(t, d(tt.wantAfter).Equal(after), "after %s", after)
		})
	}
}

func newTestLedger(balances map[uint64]decimal.Decimal) (*Ledger, *stubBalances, *stubLedgerRows) {
	users := &stubBalances{m: balances}
	rows := &stubLedgerRows{}
	return NewLedger(inlineTx{}, users, rows), users, rows
}

func TestLedger_Post(t *testing.T) {
	ledger, users, rows := newTestLedger(map[uint64]decimal.Decimal{1: d("10")})

	tx, err := ledger.Post(context.Background(), Entry{UserID: 1, Type: model.TxDeposit, Amount: d("25.5"), Description: "Deposit via manual"})
	require.NoError(t, err)
	assert.True(t, d("10").Equal(tx.BalanceBefore))
	assert.True(t, d("35.5").Equal(tx.BalanceAfter))
	assert.True(t, d("35.5").Equal(users.m[1]))
	require.Len(t, rows.rows, 1)
	assert.True(t, rows.rows[0].BalanceBefore.Add(rows.rows[0].Amount).Equal(rows.rows[0].BalanceAfter))

	_, err = ledger.Post(context.Background(), Entry{UserID: 1, Type: model.TxAdminRemove, Amount: d("36")})
	var ib *InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.True(t, d("35.5").Equal(ib.Available))
	assert.True(t, d("35.5").Equal(users.m[1]))
	assert.Len(t, rows.rows, 1)
}

func TestLedger_PostRejectsNonPositive(t *testing.T) {
	ledger, _, rows := newTestLedger(map[uint64]decimal.Decimal{1: d("10")})

	_, err := ledger.Post(context.Background(), Entry{UserID: 1, Type: model.TxDeposit, Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, rows.rows)
}
