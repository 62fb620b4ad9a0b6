package model

// StatusUpdate is the presence-change message fanned out to connected
// observers.  It is ephemeral: observers that are not connected when it is
// broadcast never see it.  Welcomed is only set on a user's first signin.
type StatusUpdate struct {
    Message  string `json:"message"`
    UserID   string `json:"user_id"`
    IsActive bool   `json:"isActive"`
    Welcomed *bool  `json:"welcomed,omitempty"`
}

// UserStatusMessage is the kind tag carried by every StatusUpdate.
const UserStatusMessage = "user_status_update"

// NewStatusUpdate builds the plain active/inactive variant.
func NewStatusUpdate(userID string, active bool) StatusUpdate {
    return StatusUpdate{Message: UserStatusMessage, UserID: userID, IsActive: active}
}

// NewWelcomeUpdate builds the first-signin variant with welcomed set.
func NewWelcomeUpdate(userID string) StatusUpdate {
    welcomed := true
    return StatusUpdate{Message: UserStatusMessage, UserID: userID, IsActive: true, Welcomed: &welcomed}
}
