package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // error wrapping and sentinel comparison
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrTokenExpired is returned when a token's signature verifies but its
// expiry has passed.  Callers treat it differently from ErrTokenInvalid:
// an expired access token prompts a refresh instead of a full re-login.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid is returned for malformed tokens, bad signatures, and
// tokens signed with the wrong secret (e.g. an access token presented
// where a refresh token is expected).
var ErrTokenInvalid = errors.New("token invalid")

// Claims is the payload carried by both token classes.  Access and refresh
// tokens share the same claim shape but are signed with different secrets,
// so one can never be replayed as the other.
type Claims struct {
    UserID uint64 `json:"user_id"`
    Email  string `json:"email"`
    jwt.RegisteredClaims
}

// NewSignedToken builds and signs an HS256 JWT carrying the user's id and
// email, expiring after ttl.  The secret selects the token class.
func NewSignedToken(secret string, userID uint64, email string, ttl time.Duration) (string, time.Time, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := &Claims{
        UserID: userID,
        Email:  email,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

// ParseToken verifies a token against the given secret and returns its
// claims.  Expiry is reported as ErrTokenExpired; every other failure mode
// (bad signature, wrong algorithm, garbage input) collapses into
// ErrTokenInvalid.
func ParseToken(secret, raw string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC before touching the secret.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrTokenInvalid
    }
    if !tok.Valid {
        return nil, ErrTokenInvalid
    }
    return claims, nil
}
