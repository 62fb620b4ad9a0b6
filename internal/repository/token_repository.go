package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// TokenRepo persists refresh tokens keyed by their signed value.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row.
func (r *TokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, refresh_token, user_email, expires_at) VALUES (?,?,?,?)",
		t.UserID, t.Token, t.UserEmail, t.ExpiresAt)
	return err
}

// Find looks a token row up by its value. sql.ErrNoRows when absent.
func (r *TokenRepo) Find(ctx context.Context, token string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,refresh_token,user_email,expires_at,created_at FROM refresh_tokens WHERE refresh_token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.UserEmail, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// Delete removes the row for the given token value and reports whether a
// row was actually removed. The single conditional DELETE is what makes
// concurrent rotation safe: exactly one caller sees true.
func (r *TokenRepo) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE refresh_token=?", token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes every row past its expiry and returns the count.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
