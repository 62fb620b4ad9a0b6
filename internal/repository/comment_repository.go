package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// CommentRepo persists coach day-notes.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentColumns = "id, coach_id, text, date, created_at, updated_at"

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.CoachID, &c.Text, &c.Date, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Insert stores a comment stamped with the given instant and returns the
// stored row.
func (r *CommentRepo) Insert(ctx context.Context, coachID uint64, text string, date time.Time) (model.Comment, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (coach_id, text, date) VALUES (?,?,?)",
		coachID, text, date)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one comment; sql.ErrNoRows when absent.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	return scanComment(r.DB.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id=?", id))
}

// FindByDay returns the comments stamped within [dayStart, dayStart+24h),
// each joined with its author's summary for the feed view.
func (r *CommentRepo) FindByDay(ctx context.Context, dayStart time.Time) ([]model.CommentWithCoach, error) {
	return r.findEnriched(ctx,
		"WHERE c.date >= ? AND c.date < ? ORDER BY c.date", dayStart, dayStart.Add(24*time.Hour))
}

// FindAll returns every comment with author info, newest day last.
func (r *CommentRepo) FindAll(ctx context.Context) ([]model.CommentWithCoach, error) {
	return r.findEnriched(ctx, "ORDER BY c.date")
}

func (r *CommentRepo) findEnriched(ctx context.Context, tail string, args ...any) ([]model.CommentWithCoach, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.coach_id, c.text, c.date, c.created_at, c.updated_at,
		       u.first_name, u.last_name, u.email, u.image_url
		FROM comments c
		JOIN users u ON u.id = c.coach_id `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CommentWithCoach
	for rows.Next() {
		var c model.CommentWithCoach
		if err := rows.Scan(&c.ID, &c.CoachID, &c.Text, &c.Date, &c.CreatedAt, &c.UpdatedAt,
			&c.CoachInfo.FirstName, &c.CoachInfo.LastName, &c.CoachInfo.Email, &c.CoachInfo.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateText replaces a comment's text and returns the updated row.
func (r *CommentRepo) UpdateText(ctx context.Context, id uint64, text string) (model.Comment, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET text=? WHERE id=?", text, id); err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment and reports whether one existed.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
