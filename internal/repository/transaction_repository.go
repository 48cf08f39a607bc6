package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// TransactionRepo is the append-only balance ledger.
type TransactionRepo struct{ db *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// InsertTx appends t within tx and fills in its ID.
func (r *TransactionRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount, balance_before, balance_after, order_id, description, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Type, t.Amount, t.BalanceBefore, t.BalanceAfter, t.OrderID, t.Description, t.CreatedBy)
	if err != nil {
		return wrap(err, "insert transaction")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert transaction id")
	}
	t.ID = uint64(id)
	t.CreatedAt = time.Now().UTC()
	return nil
}

// TransactionFilter narrows a user's ledger.
type TransactionFilter struct {
	UserID uint64
	Type   string
	Page   model.Page
}

// ListByUser returns one page of ledger rows, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, q TransactionFilter) ([]model.Transaction, int, error) {
	var f filter
	f.add("user_id = ?", q.UserID)
	if q.Type != "" {
		f.add("type = ?", q.Type)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, wrap(err, "count transactions")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount, balance_before, balance_after, order_id, COALESCE(description, ''), created_by, created_at
		 FROM transactions`+f.where()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list transactions")
	}
	defer rows.Close()

	out := make([]model.Transaction, 0, q.Page.Limit)
	for rows.Next() {
		var (
			t         model.Transaction
			orderID   sql.NullInt64
			createdBy sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
			&orderID, &t.Description, &createdBy, &t.CreatedAt); err != nil {
			return nil, 0, wrap(err, "scan transaction")
		}
		if orderID.Valid {
			id := uint64(orderID.Int64)
			t.OrderID = &id
		}
		if createdBy.Valid {
			id := uint64(createdBy.Int64)
			t.CreatedBy = &id
		}
		out = append(out, t)
	}
	return out, total, wrap(rows.Err(), "list transactions")
}
