package model

import "time"

// PlaceholderPayPeriod marks synthesized schedule entries that do not exist
// in the events table.  The frontend keys off this value together with an
// empty title to render an unclaimed slot.
const PlaceholderPayPeriod = 555

// Event is a single coaching shift as stored in the `events` table.  Title
// holds the coach's first name, or is empty for an unclaimed placeholder.
// No two persisted events share the same Start (unique index).
type Event struct {
    ID        uint64     `json:"-"`
    Title     string     `json:"title"`
    Start     time.Time  `json:"-"`
    End       time.Time  `json:"-"`
    PayPeriod int        `json:"pay_period"`
    CoachID   *uint64    `json:"-"`
}

// ScheduleEntry is the wire shape of a shift in schedule responses.  The ID
// is stringified (empty for placeholders) and times carry the original
// deployment's second-precision ISO layout.
type ScheduleEntry struct {
    ID        string `json:"_id,omitempty"`
    Title     string `json:"title"`
    Start     string `json:"start"`
    End       string `json:"end"`
    PayPeriod int    `json:"pay_period"`
    CoachID   string `json:"coach_id,omitempty"`
}

// EventTimeLayout is the layout used for event timestamps on the wire.
const EventTimeLayout = "2006-01-02T15:04:05"

// SlotTimeLayout formats a time-of-day the way the weekly template stores
// its slots, e.g. "09:00 AM".
const SlotTimeLayout = "03:04 PM"
