package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// ScheduleEventStore is the read-only slice of the event repository the
// reconciler queries, one window per projected day.
type ScheduleEventStore interface {
	FindBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

// TemplateStore provides the weekly time-slot template in template order.
type TemplateStore interface {
	Template(ctx context.Context) ([]string, error)
}

// ScheduleService merges persisted shifts against the weekly template and
// synthesizes a placeholder for every unclaimed slot. It never writes;
// placeholders exist only in the response.
type ScheduleService struct {
	events ScheduleEventStore
	slots  TemplateStore
}

func NewScheduleService(events ScheduleEventStore, slots TemplateStore) *ScheduleService {
	return &ScheduleService{events: events, slots: slots}
}

// Reconcile projects dayCount contiguous days starting at start. Per day:
// query that day's shifts, collect their start times as 12-hour strings,
// emit the persisted shifts, then emit a placeholder for every template
// slot not claimed (template order preserved). Output is deterministic for
// fixed inputs.
func (s *ScheduleService) Reconcile(ctx context.Context, start time.Time, dayCount int) ([]model.ScheduleEntry, error) {
	template, err := s.slots.Template(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading time-slot template: %w", err)
	}

	entries := make([]model.ScheduleEntry, 0, dayCount*len(template))
	for i := 0; i < dayCount; i++ {
		day := start.AddDate(0, 0, i)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())

		dayEvents, err := s.events.FindBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return nil, fmt.Errorf("loading events for %s: %w", dayStart.Format("2006-01-02"), err)
		}

		claimed := make(map[string]bool, len(dayEvents))
		for _, e := range dayEvents {
			claimed[e.Start.Format(model.SlotTimeLayout)] = true
			entries = append(entries, entryFromEvent(e))
		}

		for _, slot := range template {
			if claimed[slot] {
				continue
			}
			at, err := time.Parse(model.SlotTimeLayout, slot)
			if err != nil {
				return nil, fmt.Errorf("bad template slot %q: %w", slot, err)
			}
			slotStart := time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, day.Location())
			// The placeholder's end deliberately matches its start; clients
			// detect placeholders via pay_period and apply their own duration.
			entries = append(entries, model.ScheduleEntry{
				Title:     "",
				Start:     slotStart.Format(model.EventTimeLayout),
				End:       slotStart.Format(model.EventTimeLayout),
				PayPeriod: model.PlaceholderPayPeriod,
			})
		}
	}
	return entries, nil
}

func entryFromEvent(e model.Event) model.ScheduleEntry {
	entry := model.ScheduleEntry{
		ID:        strconv.FormatUint(e.ID, 10),
		Title:     e.Title,
		Start:     e.Start.Format(model.EventTimeLayout),
		End:       e.End.Format(model.EventTimeLayout),
		PayPeriod: e.PayPeriod,
	}
	if e.CoachID != nil {
		entry.CoachID = strconv.FormatUint(*e.CoachID, 10)
	}
	return entry
}
