// Package repository holds the MySQL data access layer. Every repository
// wraps a *sql.DB; methods suffixed Tx run inside a caller-owned
// transaction. Failures are reported with the sentinel values below so
// handlers can map them to HTTP statuses.
package repository

import (
	"database/sql"
	stderrors "errors"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the requested row does not exist or is not
// visible to the caller. Handlers translate it into a 404.
var ErrNotFound = stderrors.New("not found")

// ErrDuplicate is returned when a unique key (username, email, coupon
// code, api_service_id) already exists.
var ErrDuplicate = stderrors.New("duplicate")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = stderrors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a category
// that still has services. Handlers should translate this into a 409
// (or 400 where the API historically answered so).
var ErrConflict = stderrors.New("conflict")

const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return stderrors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// wrap maps driver errors onto the package sentinels and annotates the
// rest with the failing operation.
func wrap(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isDuplicate(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// affected turns a zero RowsAffected into ErrNotFound.
func affected(res sql.Result, err error, op string) error {
	if err != nil {
		return wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rollback is deferred by transactional methods; it is a no-op once the
// transaction has been committed.
func rollback(tx *sql.Tx) { _ = tx.Rollback() }
