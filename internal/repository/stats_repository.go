package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// StatsRepo runs the dashboard aggregates.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// OrderCounters aggregates orders visible under scope. completedValue is
// the summed price of completed orders.
func (r *StatsRepo) OrderCounters(ctx context.Context, scope model.OrderScope) (model.OrderCounters, decimal.Decimal, error) {
	f := OrderFilter{Scope: scope}.build()
	var (
		c     model.OrderCounters
		value decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(o.status = 'pending'), 0),
			COALESCE(SUM(o.status = 'in_progress'), 0),
			COALESCE(SUM(o.status = 'completed'), 0),
			COALESCE(SUM(o.status = 'canceled'), 0),
			SUM(CASE WHEN o.status = 'completed' THEN o.price ELSE 0 END)
		 FROM orders o`+f.where(), f.args...).
		Scan(&c.Total, &c.Pending, &c.InProgress, &c.Completed, &c.Failed, &value)
	if err != nil {
		return c, decimal.Zero, wrap(err, "order counters")
	}
	if !value.Valid {
		return c, decimal.Zero, nil
	}
	return c, value.Decimal, nil
}

// UserCounters returns the total number of users and the client and
// seller subsets.
func (r *StatsRepo) UserCounters(ctx context.Context) (total, clients, sellers int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(role = 'client'), 0), COALESCE(SUM(role = 'seller'), 0) FROM users`).
		Scan(&total, &clients, &sellers)
	if err != nil {
		return 0, 0, 0, wrap(err, "user counters")
	}
	return total, clients, sellers, nil
}
