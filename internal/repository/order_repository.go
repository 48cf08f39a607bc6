package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// OrderRepo stores orders. Balance and ledger effects of an order are the
// caller's business; the Tx methods let them share one transaction.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `o.id, o.user_id, o.seller_id, o.service_id, o.link, o.quantity, o.price, o.status,
	o.start_count, o.remains, o.created_at, o.updated_at, o.completed_at`

const orderDetailSelect = `SELECT ` + orderColumns + `,
	s.name, c.name, u.username, u.email, COALESCE(su.username, '')
	FROM orders o
	JOIN services s ON s.id = o.service_id
	JOIN categories c ON c.id = s.category_id
	JOIN users u ON u.id = o.user_id
	LEFT JOIN users su ON su.id = o.seller_id`

func orderDest(o *model.Order, seller *sql.NullInt64, start, remains *sql.NullInt32, completed *sql.NullTime) []any {
	return []any{&o.ID, &o.UserID, seller, &o.ServiceID, &o.Link, &o.Quantity, &o.Price, &o.Status,
		start, remains, &o.CreatedAt, &o.UpdatedAt, completed}
}

func fillOrderNulls(o *model.Order, seller sql.NullInt64, start, remains sql.NullInt32, completed sql.NullTime) {
	if seller.Valid {
		id := uint64(seller.Int64)
		o.SellerID = &id
	}
	if start.Valid {
		n := int(start.Int32)
		o.StartCount = &n
	}
	if remains.Valid {
		n := int(remains.Int32)
		o.Remains = &n
	}
	if completed.Valid {
		o.CompletedAt = &completed.Time
	}
}

func scanOrder(s rowScanner) (*model.Order, error) {
	var (
		o         model.Order
		seller    sql.NullInt64
		start     sql.NullInt32
		remains   sql.NullInt32
		completed sql.NullTime
	)
	if err := s.Scan(orderDest(&o, &seller, &start, &remains, &completed)...); err != nil {
		return nil, err
	}
	fillOrderNulls(&o, seller, start, remains, completed)
	return &o, nil
}

func scanOrderDetail(s rowScanner) (*model.Order, error) {
	var (
		o         model.Order
		seller    sql.NullInt64
		start     sql.NullInt32
		remains   sql.NullInt32
		completed sql.NullTime
	)
	dest := append(orderDest(&o, &seller, &start, &remains, &completed),
		&o.ServiceName, &o.CategoryName, &o.ClientUsername, &o.ClientEmail, &o.SellerUsername)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	fillOrderNulls(&o, seller, start, remains, completed)
	return &o, nil
}

// CreateTx inserts a pending order within tx and fills in ID and timestamps.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, service_id, link, quantity, price, status) VALUES (?, ?, ?, ?, ?, ?)",
		o.UserID, o.ServiceID, o.Link, o.Quantity, o.Price, o.Status)
	if err != nil {
		return wrap(err, "insert order")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert order id")
	}
	o.ID = uint64(id)
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// LockTx loads an order and locks its row until tx ends.
func (r *OrderRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = ? FOR UPDATE", id))
	return o, wrap(err, "lock order")
}

// SaveProgressTx persists status, seller assignment, counters and
// completion time of o.
func (r *OrderRepo) SaveProgressTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, seller_id = ?, start_count = ?, remains = ?, completed_at = ?, updated_at = NOW()
		 WHERE id = ?`,
		o.Status, o.SellerID, o.StartCount, o.Remains, o.CompletedAt, o.ID)
	return affected(res, err, "update order")
}

// OrderFilter narrows order lists. Unassigned lists the pending orders no
// seller has claimed yet and ignores the seller part of Scope.
type OrderFilter struct {
	Scope      model.OrderScope
	Status     string
	Search     string
	Unassigned bool
	Page       model.Page
}

func (q OrderFilter) build() filter {
	var f filter
	if q.Scope.ClientID > 0 {
		f.add("o.user_id = ?", q.Scope.ClientID)
	}
	switch {
	case q.Unassigned:
		f.add("o.seller_id IS NULL")
		f.add("o.status = ?", model.OrderPending)
	case q.Scope.SellerID > 0:
		f.add("o.seller_id = ?", q.Scope.SellerID)
	}
	if q.Status != "" {
		f.add("o.status = ?", q.Status)
	}
	f.like(q.Search, "s.name", "o.link")
	return f
}

// List returns one page of orders visible under q.Scope, newest first.
func (r *OrderRepo) List(ctx context.Context, q OrderFilter) ([]model.Order, int, error) {
	f := q.build()

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders o JOIN services s ON s.id = o.service_id"+f.where(), f.args...).Scan(&total)
	if err != nil {
		return nil, 0, wrap(err, "count orders")
	}

	rows, err := r.db.QueryContext(ctx,
		orderDetailSelect+f.where()+" ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?",
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list orders")
	}
	defer rows.Close()
	out, err := collectOrders(rows, q.Page.Limit)
	return out, total, err
}

// Recent returns the latest orders visible under scope.
func (r *OrderRepo) Recent(ctx context.Context, scope model.OrderScope, limit int) ([]model.Order, error) {
	f := OrderFilter{Scope: scope}.build()
	rows, err := r.db.QueryContext(ctx,
		orderDetailSelect+f.where()+" ORDER BY o.created_at DESC, o.id DESC LIMIT ?", append(f.args, limit)...)
	if err != nil {
		return nil, wrap(err, "recent orders")
	}
	defer rows.Close()
	return collectOrders(rows, limit)
}

// GetVisible returns an order if it lies inside scope.
func (r *OrderRepo) GetVisible(ctx context.Context, id uint64, scope model.OrderScope) (*model.Order, error) {
	f := OrderFilter{Scope: scope}.build()
	f.add("o.id = ?", id)
	o, err := scanOrderDetail(r.db.QueryRowContext(ctx, orderDetailSelect+f.where(), f.args...))
	return o, wrap(err, "get order")
}

// ExportFilter selects orders for the CSV export. Zero times are open ends.
type ExportFilter struct {
	Status string
	From   time.Time
	To     time.Time
}

// Export returns every matching order, newest first.
func (r *OrderRepo) Export(ctx context.Context, q ExportFilter) ([]model.Order, error) {
	var f filter
	if q.Status != "" {
		f.add("o.status = ?", q.Status)
	}
	if !q.From.IsZero() {
		f.add("o.created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		f.add("o.created_at <= ?", q.To)
	}
	rows, err := r.db.QueryContext(ctx, orderDetailSelect+f.where()+" ORDER BY o.created_at DESC, o.id DESC", f.args...)
	if err != nil {
		return nil, wrap(err, "export orders")
	}
	defer rows.Close()
	return collectOrders(rows, 0)
}

func collectOrders(rows *sql.Rows, capHint int) ([]model.Order, error) {
	out := make([]model.Order, 0, capHint)
	for rows.Next() {
		o, err := scanOrderDetail(rows)
		if err != nil {
			return nil, wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	return out, wrap(rows.Err(), "read orders")
}
