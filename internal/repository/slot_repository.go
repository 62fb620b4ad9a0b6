package repository

import (
	"context"
	"database/sql"
)

// SlotRepo reads the weekly time-slot template: the fixed, ordered set of
// time-of-day strings ("09:00 AM", ...) offered every day.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

// Template returns the slot times in template order.
func (r *SlotRepo) Template(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT slot_time FROM recurring_time_slots ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Seed inserts the given slots when the table is empty. Boot-time helper so
// a fresh database serves a usable schedule.
func (r *SlotRepo) Seed(ctx context.Context, slots []string) error {
	var n int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM recurring_time_slots").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for i, s := range slots {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO recurring_time_slots (slot_time, position) VALUES (?,?)", s, i); err != nil {
			return err
		}
	}
	return nil
}
