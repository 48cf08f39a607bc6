package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type CouponRepo struct{ db *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, code, discount_type, discount_value, max_discount, usage_limit, used_count,
	valid_from, valid_until, status, created_at`

func scanCoupon(s rowScanner) (*model.Coupon, error) {
	var (
		c        model.Coupon
		maxDisc  decimal.NullDecimal
		limit    sql.NullInt32
		from, to sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &maxDisc, &limit, &c.UsedCount,
		&from, &to, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	if maxDisc.Valid {
		c.MaxDiscount = &maxDisc.Decimal
	}
	if limit.Valid {
		n := int(limit.Int32)
		c.UsageLimit = &n
	}
	if from.Valid {
		c.ValidFrom = &from.Time
	}
	if to.Valid {
		c.ValidUntil = &to.Time
	}
	return &c, nil
}

// LockByCodeTx loads a coupon by code and locks it until tx ends so
// concurrent orders cannot exceed its usage limit.
func (r *CouponRepo) LockByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.Coupon, error) {
	c, err := scanCoupon(tx.QueryRowContext(ctx, "SELECT "+couponColumns+" FROM coupons WHERE code = ? FOR UPDATE", code))
	return c, wrap(err, "lock coupon")
}

// RedeemTx records a coupon use for an order and bumps used_count. The
// increment is guarded by the usage limit; an exhausted coupon reports
// ErrConflict.
func (r *CouponRepo) RedeemTx(ctx context.Context, tx *sql.Tx, couponID, userID, orderID uint64, discount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE coupons SET used_count = used_count + 1 WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)",
		couponID)
	if err := affected(res, err, "increment coupon usage"); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrConflict
		}
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO coupon_usage (coupon_id, user_id, order_id, discount_amount) VALUES (?, ?, ?, ?)",
		couponID, userID, orderID, discount)
	return wrap(err, "insert coupon usage")
}

// List returns every coupon, newest first.
func (r *CouponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+couponColumns+" FROM coupons ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, wrap(err, "list coupons")
	}
	defer rows.Close()
	out := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, wrap(err, "scan coupon")
		}
		out = append(out, *c)
	}
	return out, wrap(rows.Err(), "list coupons")
}

func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, max_discount, usage_limit, valid_from, valid_until, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.DiscountType, c.DiscountValue, c.MaxDiscount, c.UsageLimit, c.ValidFrom, c.ValidUntil, c.Status)
	if err != nil {
		return wrap(err, "insert coupon")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert coupon id")
	}
	c.ID = uint64(id)
	return nil
}

func (r *CouponRepo) SetStatus(ctx context.Context, id uint64, status model.CatalogStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE coupons SET status = ? WHERE id = ?", status, id)
	return affected(res, err, "update coupon status")
}
