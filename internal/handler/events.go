package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/middleware"
	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/repository"
	"github.com/cartier55/coachbox-backend/internal/service"
)

// dateLayout is the wire format for date-only query parameters.
const dateLayout = "2006-01-02"

// Business hours bound the coach-facing range queries: nothing is
// scheduled before 4 AM or after 10 PM.
const (
	businessOpenHour  = 4
	businessCloseHour = 22
)

// EventHandler serves the schedule endpoints.
type EventHandler struct {
	Events   *repository.EventRepo
	Schedule *service.ScheduleService
	Importer *service.ImportService
}

func NewEventHandler(events *repository.EventRepo, schedule *service.ScheduleService, importer *service.ImportService) *EventHandler {
	return &EventHandler{Events: events, Schedule: schedule, Importer: importer}
}

// ----- DTOs -----

type eventReq struct {
	Title     string  `json:"title"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	PayPeriod int     `json:"pay_period"`
	CoachID   *uint64 `json:"coach_id"`
}

// EventsForMonth returns every shift in the given calendar month.
// GET /events/month?year=2026&month=8
func (h *EventHandler) EventsForMonth(c echo.Context) error {
	year, err1 := strconv.Atoi(c.QueryParam("year"))
	month, err2 := strconv.Atoi(c.QueryParam("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "year and month required"})
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.FindBetween(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, entriesFrom(events))
}

// EventsInRange returns the signed-in coach's shifts between two dates,
// clipped to business hours.
// GET /events/range?from=2026-08-01&to=2026-08-07
func (h *EventHandler) EventsInRange(c echo.Context) error {
	user := middleware.CurrentUser(c)

	from, err1 := time.ParseInLocation(dateLayout, c.QueryParam("from"), time.UTC)
	to, err2 := time.ParseInLocation(dateLayout, c.QueryParam("to"), time.UTC)
	if err1 != nil || err2 != nil || to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "from and to dates required"})
	}

	lo := time.Date(from.Year(), from.Month(), from.Day(), businessOpenHour, 0, 0, 0, time.UTC)
	hi := time.Date(to.Year(), to.Month(), to.Day(), businessCloseHour, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.FindCoachBetween(ctx, user.ID, lo, hi)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, entriesFrom(events))
}

// WeeklyHours sums the signed-in coach's scheduled hours for the week
// containing the given date (Monday through Sunday).
// GET /events/weekly-hours?date=2026-08-31
func (h *EventHandler) WeeklyHours(c echo.Context) error {
	user := middleware.CurrentUser(c)

	day, err := time.ParseInLocation(dateLayout, c.QueryParam("date"), time.UTC)
	if err != nil {
		day = time.Now().UTC()
	}
	// Roll back to Monday, then clip the week to business hours.
	offset := (int(day.Weekday()) + 6) % 7
	monday := time.Date(day.Year(), day.Month(), day.Day(), businessOpenHour, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6).Add(time.Duration(businessCloseHour-businessOpenHour) * time.Hour)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.FindCoachBetween(ctx, user.ID, monday, sunday)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}

	var total time.Duration
	for _, e := range events {
		total += e.End.Sub(e.Start)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"week_of": monday.Format(dateLayout),
		"hours":   total.Hours(),
	})
}

// NextEvents returns the signed-in coach's next few upcoming shifts.
func (h *EventHandler) NextEvents(c echo.Context) error {
	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.FindUpcoming(ctx, user.ID, time.Now().UTC(), 3)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, entriesFrom(events))
}

// CreateOrUpdate upserts a shift keyed by its start instant: shifts are
// unique per start, so posting an existing start edits that shift instead
// of duplicating it.
func (h *EventHandler) CreateOrUpdate(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	start, err := time.ParseInLocation(model.EventTimeLayout, req.Start, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid start"})
	}
	end, err := time.ParseInLocation(model.EventTimeLayout, req.End, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid end"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := model.Event{
		Title:     req.Title,
		Start:     start,
		End:       end,
		PayPeriod: req.PayPeriod,
		CoachID:   req.CoachID,
	}

	existing, err := h.Events.FindByStart(ctx, start)
	switch {
	case err == nil:
		ev.ID = existing.ID
		if err := h.Events.Update(ctx, ev); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
		}
		return c.JSON(http.StatusOK, entryFrom(ev))
	case errors.Is(err, sql.ErrNoRows):
		id, err := h.Events.Insert(ctx, ev)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateStart) {
				return c.JSON(http.StatusConflict, echo.Map{"detail": "shift already exists at that start"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "insert failed"})
		}
		ev.ID = id
		return c.JSON(http.StatusCreated, entryFrom(ev))
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
}

// CreateEmptyEvent persists an unclaimed slot at the given start. The
// shift gets the placeholder pay period and a real end time, so it shows
// on calendars as an open slot a coach can claim.
func (h *EventHandler) CreateEmptyEvent(c echo.Context) error {
	var req struct {
		Start string `json:"start"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	start, err := time.ParseInLocation(model.EventTimeLayout, req.Start, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid start"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := model.Event{
		Title:     "",
		Start:     start,
		End:       start.Add(service.ShiftDuration),
		PayPeriod: model.PlaceholderPayPeriod,
	}
	id, err := h.Events.Insert(ctx, ev)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStart) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "shift already exists at that start"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "insert failed"})
	}
	ev.ID = id
	return c.JSON(http.StatusCreated, entryFrom(ev))
}

// GetTimeSlots projects the schedule for a run of days, filling unclaimed
// template slots with placeholders.
// GET /events/time-slots?start=2026-08-31&days=7
func (h *EventHandler) GetTimeSlots(c echo.Context) error {
	start, err := time.ParseInLocation(dateLayout, c.QueryParam("start"), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "start date required"})
	}
	days := 1
	if raw := c.QueryParam("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > 31 {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "days must be between 1 and 31"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	entries, err := h.Schedule.Reconcile(ctx, start, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "reconcile failed"})
	}
	return c.JSON(http.StatusOK, entries)
}

type importShiftReq struct {
	Title string `json:"title"`
	Start string `json:"start"`
}

// ImportShifts replaces the whole schedule with a freshly published batch
// of spreadsheet shifts. Admin only; rows must arrive in chronological
// order for pay-period bucketing.
func (h *EventHandler) ImportShifts(c echo.Context) error {
	var reqs []importShiftReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "no shifts to import"})
	}

	records := make([]service.RawShift, 0, len(reqs))
	for _, r := range reqs {
		start, err := time.ParseInLocation(model.EventTimeLayout, r.Start, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid start: " + r.Start})
		}
		records = append(records, service.RawShift{Title: r.Title, Start: start})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.Importer.Import(ctx, records)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "import failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"imported": n})
}

// ----- helpers -----

func entryFrom(e model.Event) model.ScheduleEntry {
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

func entriesFrom(events []model.Event) []model.ScheduleEntry {
	entries := make([]model.ScheduleEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, entryFrom(e))
	}
	return entries
}
