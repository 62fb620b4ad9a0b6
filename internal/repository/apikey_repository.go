package repository

import (
	"context"
	"database/sql"
)

// APIKeyRepo persists the keys that gate machine-to-machine endpoints
// (the newsletter forwarder posts programming updates with one).
type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// Insert stores a freshly generated key.
func (r *APIKeyRepo) Insert(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, "INSERT INTO api_keys (api_key) VALUES (?)", key)
	return err
}

// Exists reports whether the key is known.
func (r *APIKeyRepo) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_keys WHERE api_key=?", key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
