package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

const eventColumns = "id,title,starts_at,ends_at,pay_period,coach_id"

// EventRepo persists coaching shifts.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.PayPeriod, &e.CoachID)
	return e, err
}

// Insert stores a new shift. The unique index on starts_at rejects a second
// shift at the same instant.
func (r *EventRepo) Insert(ctx context.Context, e model.Event) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO events (title, starts_at, ends_at, pay_period, coach_id) VALUES (?,?,?,?,?)",
		e.Title, e.Start, e.End, e.PayPeriod, e.CoachID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicateStart
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByStart returns the shift at the exact start instant, if any.
func (r *EventRepo) FindByStart(ctx context.Context, start time.Time) (model.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE starts_at=? LIMIT 1", start))
}

// Update overwrites an existing shift's fields.
func (r *EventRepo) Update(ctx context.Context, e model.Event) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET title=?, starts_at=?, ends_at=?, pay_period=?, coach_id=? WHERE id=?",
		e.Title, e.Start, e.End, e.PayPeriod, e.CoachID, e.ID)
	return err
}

// FindBetween returns shifts whose start falls in [from, to], ordered by
// start. Both bounds are inclusive to match the day-window queries.
func (r *EventRepo) FindBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE starts_at >= ? AND starts_at <= ? ORDER BY starts_at", from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// FindByCoach returns every shift assigned to the coach, ordered by start.
func (r *EventRepo) FindByCoach(ctx context.Context, coachID uint64) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE coach_id=? ORDER BY starts_at", coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// FindCoachBetween returns the coach's shifts within [from, to].
func (r *EventRepo) FindCoachBetween(ctx context.Context, coachID uint64, from, to time.Time) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE coach_id=? AND starts_at >= ? AND starts_at <= ? ORDER BY starts_at",
		coachID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// FindUpcoming returns the coach's next shifts at or after from.
func (r *EventRepo) FindUpcoming(ctx context.Context, coachID uint64, from time.Time, limit int) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE coach_id=? AND starts_at >= ? ORDER BY starts_at LIMIT ?",
		coachID, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ReplaceAll wipes the table and inserts the given shifts in one
// transaction. Used by the spreadsheet import, which always produces the
// full schedule.
func (r *EventRepo) ReplaceAll(ctx context.Context, events []model.Event) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return 0, err
	}
	inserted := 0
	for _, e := range events {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (title, starts_at, ends_at, pay_period, coach_id) VALUES (?,?,?,?,?)",
			e.Title, e.Start, e.End, e.PayPeriod, e.CoachID); err != nil {
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
