package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, email, password, role, balance, status, api_key_hash, created_at, last_login"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u      model.User
		apiKey sql.NullString
		last   sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Balance,
		&u.Status, &apiKey, &u.CreatedAt, &last); err != nil {
		return nil, err
	}
	if apiKey.Valid {
		u.APIKeyHash = &apiKey.String
	}
	if last.Valid {
		u.LastLogin = &last.Time
	}
	return &u, nil
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts a user with a precomputed password hash and fills in ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password, role, balance, status) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.Role, u.Balance, u.Status)
	if err != nil {
		return wrap(err, "insert user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert user id")
	}
	u.ID = uint64(id)
	return nil
}

// Taken reports whether username or email belongs to a user other than
// excludeID (zero excludes nobody).
func (r *UserRepo) Taken(ctx context.Context, username, email string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE (username = ? OR email = ?) AND id <> ?",
		username, NormalizeEmail(email), excludeID).Scan(&n)
	if err != nil {
		return false, wrap(err, "check user uniqueness")
	}
	return n > 0, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email)))
	return u, wrap(err, "get user by email")
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	return u, wrap(err, "get user")
}

// GetByAPIKeyHash resolves an external API key to its owner.
func (r *UserRepo) GetByAPIKeyHash(ctx context.Context, hash string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE api_key_hash = ? LIMIT 1", hash))
	return u, wrap(err, "get user by api key")
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = NOW() WHERE id = ?", id)
	return wrap(err, "touch last login")
}

// UpdateProfile changes the non-nil fields. Callers reject empty updates.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email *string) error {
	sets := []string{}
	args := []any{}
	if username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *username)
	}
	if email != nil {
		sets = append(sets, "email = ?")
		args = append(args, NormalizeEmail(*email))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return affected(res, err, "update profile")
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", hash, id)
	return affected(res, err, "update password")
}

// SetAPIKeyHash replaces the user's API key hash.
func (r *UserRepo) SetAPIKeyHash(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET api_key_hash = ? WHERE id = ?", hash, id)
	return affected(res, err, "set api key")
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, status model.UserStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", status, id)
	return affected(res, err, "update user status")
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   model.Page
}

// List returns one page of users, newest first, and the total match count.
func (r *UserRepo) List(ctx context.Context, q UserFilter) ([]model.User, int, error) {
	var f filter
	if q.Role != "" {
		f.add("role = ?", q.Role)
	}
	if q.Status != "" {
		f.add("status = ?", q.Status)
	}
	f.like(q.Search, "username", "email")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, wrap(err, "count users")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+f.where()+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list users")
	}
	defer rows.Close()

	out := make([]model.User, 0, q.Page.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrap(err, "scan user")
		}
		out = append(out, *u)
	}
	return out, total, wrap(rows.Err(), "list users")
}

// LockBalanceTx reads the balance with a row lock held until tx ends.
func (r *UserRepo) LockBalanceTx(ctx context.Context, tx *sql.Tx, id uint64) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ? FOR UPDATE", id).Scan(&bal)
	return bal, wrap(err, "lock balance")
}

func (r *UserRepo) SetBalanceTx(ctx context.Context, tx *sql.Tx, id uint64, balance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET balance = ? WHERE id = ?", balance, id)
	return affected(res, err, "set balance")
}

// AttachReferral links userID to the active affiliate owning code. It
// reports false when no such affiliate exists.
func (r *UserRepo) AttachReferral(ctx context.Context, code string, userID uint64) (bool, error) {
	var affiliateID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM affiliates WHERE referral_code = ? AND status = 'active' LIMIT 1", code).Scan(&affiliateID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap(err, "find affiliate")
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO affiliate_referrals (affiliate_id, referred_user_id, status) VALUES (?, ?, 'pending')",
		affiliateID, userID)
	if err != nil {
		return false, wrap(err, "insert referral")
	}
	return true, nil
}

// Balance returns the current balance without locking.
func (r *UserRepo) Balance(ctx context.Context, id uint64) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := r.db.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ?", id).Scan(&bal)
	return bal, wrap(err, "get balance")
}
