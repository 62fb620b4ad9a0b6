package model

import "time"

// Comment is a coach's note pinned to the day it was written: handoff
// notes between shifts, athlete observations, equipment issues.
type Comment struct {
	ID        uint64    `json:"id"`
	CoachID   uint64    `json:"coach_id"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CommentWithCoach is the day-feed shape: the comment plus enough author
// detail to render it without a second lookup.
type CommentWithCoach struct {
	Comment
	CoachInfo CoachInfo `json:"coach_info"`
}

// CoachInfo is the author summary embedded in a day's comment feed.
type CoachInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ImageURL  string `json:"pfp"`
}
