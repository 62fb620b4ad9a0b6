package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// ShiftDuration is the fixed length of every coaching shift.
const ShiftDuration = time.Hour

// payPeriodDays is the size of a payroll bucket.
const payPeriodDays = 14

// RawShift is one cell of the published schedule spreadsheet: a coach's
// first name against a concrete start instant. The spreadsheet parsing
// itself lives outside this service; callers hand in the extracted rows
// in chronological order.
type RawShift struct {
	Title string
	Start time.Time
}

// ImportEventStore is the slice of the event repository the importer
// writes through.
type ImportEventStore interface {
	ReplaceAll(ctx context.Context, events []model.Event) (int, error)
}

// CoachMatcher resolves a shift title to the coach account it names.
type CoachMatcher interface {
	GetCoachByFirstName(ctx context.Context, firstName string) (model.User, error)
}

// ImportService turns raw spreadsheet shifts into persisted events,
// assigning pay periods and coach ids along the way.
type ImportService struct {
	events ImportEventStore
	users  CoachMatcher
}

func NewImportService(events ImportEventStore, users CoachMatcher) *ImportService {
	return &ImportService{events: events, users: users}
}

// BuildEvents assigns pay-period buckets over a chronologically sorted
// batch. The bucket counter starts at 1 and increments whenever a shift's
// start date is 14 or more days after the first shift of the current
// bucket, at which point that shift's date becomes the new bucket anchor.
func BuildEvents(records []RawShift) []model.Event {
	events := make([]model.Event, 0, len(records))
	payPeriod := 1
	var anchor time.Time
	for i, rec := range records {
		day := truncateToDay(rec.Start)
		if i == 0 {
			anchor = day
		} else if day.Sub(anchor) >= payPeriodDays*24*time.Hour {
			anchor = day
			payPeriod++
		}
		events = append(events, model.Event{
			Title:     rec.Title,
			Start:     rec.Start,
			End:       rec.Start.Add(ShiftDuration),
			PayPeriod: payPeriod,
		})
	}
	return events
}

// Import bucketizes the batch, resolves each shift's coach by first name
// and replaces the persisted schedule wholesale. Shifts naming an unknown
// coach are logged and skipped, matching how the published spreadsheet is
// reconciled against actual accounts.
func (s *ImportService) Import(ctx context.Context, records []RawShift) (int, error) {
	built := BuildEvents(records)
	assigned := make([]model.Event, 0, len(built))
	for _, e := range built {
		coach, err := s.users.GetCoachByFirstName(ctx, e.Title)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Printf("import: no coach found with first name matching %q, skipping shift at %s", e.Title, e.Start)
				continue
			}
			return 0, err
		}
		id := coach.ID
		e.CoachID = &id
		assigned = append(assigned, e)
	}
	n, err := s.events.ReplaceAll(ctx, assigned)
	if err != nil {
		return 0, err
	}
	log.Printf("import: inserted %d events", n)
	return n, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
