// Package queue defines notification payloads exchanged over the message
// broker, plus the publisher and background consumer for them.
package queue

// Event kinds carried on the notifications queue.
const (
	KindProgrammingUpdated = "programming.updated"
	KindUserSignedUp       = "user.signed_up"
)

// NotificationEvent is published when something happened that coaches or
// staff dashboards may want to surface. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type NotificationEvent struct {
	Kind       string `json:"kind"`
	UserID     uint64 `json:"user_id,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	WeekNumber int    `json:"week_number,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
