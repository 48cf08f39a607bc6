package service

import (
	"context"
	"database/sql"
)

// TxRunner runs fn inside one database transaction, committing when fn
// returns nil and rolling back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SQLTx is the TxRunner backed by a MySQL pool.
type SQLTx struct{ DB *sql.DB }

func (r SQLTx) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
