package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/utils"
)

const userColumns = "id,email,password_hash,first_name,last_name,role,is_admin,disabled,is_active,welcomed,last_seen_at,image_url,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsAdmin, &u.Disabled, &u.IsActive, &u.Welcomed,
		&u.LastSeenAt, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	isAdmin := role == model.RoleAdmin
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role, is_admin) VALUES (?,?,?,?,?,?)",
		email, hash, firstName, lastName, role, isAdmin)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetAdmin fetches a user only when it carries the admin flag.
func (r *UserRepo) GetAdmin(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_admin=1 LIMIT 1", id))
}

// GetCoachByFirstName matches an imported shift title to a coach account
// (case-insensitive exact match, coaches only).
func (r *UserRepo) GetCoachByFirstName(ctx context.Context, firstName string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(first_name)=LOWER(?) AND role=? LIMIT 1",
		strings.TrimSpace(firstName), model.RoleCoach))
}

// List returns up to limit users for the admin dashboard.
func (r *UserRepo) List(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Touch records an authenticated request: single atomic update of the
// active flag and last-seen timestamp. Deliberately silent (no broadcast);
// this runs on every request.
func (r *UserRepo) Touch(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=1, last_seen_at=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// MarkWelcomed flips the welcomed and active flags in one statement as part
// of a user's first signin.
func (r *UserRepo) MarkWelcomed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET welcomed=1, is_active=1 WHERE id=?", id)
	return err
}

// MarkActive flips only the active flag (repeat signins of an already
// welcomed user).
func (r *UserRepo) MarkActive(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=1 WHERE id=?", id)
	return err
}

// FindStale returns ids of users still flagged active whose last request
// predates cutoff.
func (r *UserRepo) FindStale(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM users WHERE is_active=1 AND last_seen_at IS NOT NULL AND last_seen_at < ?", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkInactive bulk-flips the given users to inactive and returns how many
// rows actually changed. The is_active guard keeps a user who signed back
// in between the stale read and this write from being flipped.
func (r *UserRepo) MarkInactive(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=0 WHERE is_active=1 AND id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UserUpdate carries optional profile fields; nil means leave unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	ImageURL  *string
}

// UpdateDetails applies the non-nil fields and returns the post-update row.
func (r *UserRepo) UpdateDetails(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	var sets []string
	var args []any
	if upd.FirstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *upd.LastName)
	}
	if upd.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.ImageURL != nil {
		sets = append(sets, "image_url=?")
		args = append(args, *upd.ImageURL)
	}
	if len(sets) == 0 {
		return model.User{}, fmt.Errorf("no fields to update")
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}
