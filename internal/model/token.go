package model

import "time"

// RefreshToken models a row in the `refresh_tokens` table.  The signed
// token value itself is the lookup key; a row's presence is what keeps the
// session alive, so rotation deletes the old row before inserting the new
// one.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – the signed refresh token value.
//  UserEmail – owner's email, denormalized for audit queries.
//  ExpiresAt – absolute expiry enforced at validation time.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64
    UserID    uint64
    Token     string
    UserEmail string
    ExpiresAt time.Time
    CreatedAt time.Time
}

// TokenPair is what the token service hands back on issue and rotate.  The
// access token is stateless; only the refresh token is persisted.
type TokenPair struct {
    AccessToken  string    `json:"access_token"`
    RefreshToken string    `json:"refresh_token"`
    UserID       uint64    `json:"-"`
    UserEmail    string    `json:"-"`
    ExpiresAt    time.Time `json:"-"` // refresh expiry
}
