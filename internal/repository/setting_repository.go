package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type SettingRepo struct{ db *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// All returns every stored setting.
func (r *SettingRepo) All(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT setting_key, COALESCE(setting_value, ''), setting_type FROM settings ORDER BY setting_key")
	if err != nil {
		return nil, wrap(err, "list settings")
	}
	defer rows.Close()
	out := []model.Setting{}
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Type); err != nil {
			return nil, wrap(err, "scan setting")
		}
		out = append(out, s)
	}
	return out, wrap(rows.Err(), "list settings")
}

// Upsert writes all settings in one transaction.
func (r *SettingRepo) Upsert(ctx context.Context, settings []model.Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin settings")
	}
	defer rollback(tx)
	for _, s := range settings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (setting_key, setting_value, setting_type) VALUES (?, ?, ?)
			 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), setting_type = VALUES(setting_type)`,
			s.Key, s.Value, s.Type); err != nil {
			return wrap(err, "upsert setting "+s.Key)
		}
	}
	return wrap(tx.Commit(), "commit settings")
}

// Number reads a numeric setting, falling back to def when it is missing
// or unparsable.
func (r *SettingRepo) Number(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	var v sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, wrap(err, "get setting "+key)
	}
	d, perr := decimal.NewFromString(v.String)
	if !v.Valid || perr != nil {
		return def, nil
	}
	return d, nil
}
