package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists password reset tokens. Only the SHA-256 hash of a
// token is stored.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// ReplaceReset drops every outstanding token of the user and stores a new one.
func (r *TokenRepo) ReplaceReset(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin reset token")
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, "DELETE FROM password_reset_tokens WHERE user_id = ?", userID); err != nil {
		return wrap(err, "delete reset tokens")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp); err != nil {
		return wrap(err, "insert reset token")
	}
	return wrap(tx.Commit(), "commit reset token")
}

// ValidateReset returns the owner of an unused, unexpired token.
func (r *TokenRepo) ValidateReset(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		used      bool
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at, used FROM password_reset_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &used)
	if err != nil {
		return 0, wrap(err, "get reset token")
	}
	if used || time.Now().UTC().After(expiresAt) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// Consume marks the token used and stores the new password hash in one
// transaction. A token that was already used reports ErrNotFound so a
// concurrent reset cannot reuse it.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string, userID uint64, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin reset")
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used = 1 WHERE token_hash = ? AND used = 0", tokenHash)
	if err := affected(res, err, "mark reset token used"); err != nil {
		return err
	}
	res, err = tx.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", passwordHash, userID)
	if err := affected(res, err, "reset password"); err != nil {
		return err
	}
	return wrap(tx.Commit(), "commit reset")
}
