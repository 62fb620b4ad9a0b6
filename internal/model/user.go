package model

import "time"

// Role values stored in users.role.  The original deployment distinguished
// coaches from administrators with separate record shapes; here a single
// User row carries a role string plus the is_admin capability flag.
const (
    RoleCoach = "coach"
    RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  Presence fields (IsActive, LastSeenAt) are mutated by the
// presence tracker; Welcomed flips to true on a user's first signin.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name, also used to match imported shifts to coaches.
//  LastName     – family name.
//  Role         – "coach" or "admin".
//  IsAdmin      – capability flag for administrative endpoints.
//  Disabled     – disabled accounts fail authentication checks.
//  IsActive     – whether the user has made a request recently.
//  Welcomed     – whether the first-signin welcome has been broadcast.
//  LastSeenAt   – timestamp of the last authenticated request (nullable).
//  ImageURL     – stored path of the profile picture.
type User struct {
    ID           uint64
    Email        string
    PasswordHash string
    FirstName    string
    LastName     string
    Role         string
    IsAdmin      bool
    Disabled     bool
    IsActive     bool
    Welcomed     bool
    LastSeenAt   *time.Time
    ImageURL     string
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// CanAdmin reports whether the user may hit administrative endpoints.
func (u User) CanAdmin() bool {
    return u.IsAdmin && !u.Disabled
}
