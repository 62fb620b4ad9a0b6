// Package service holds the stateful subsystems behind the HTTP layer:
// credential lifecycle, presence tracking, schedule reconciliation, the
// shift import pipeline and programming-materials ingestion.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/utils"
)

// Re-exported so callers can branch on token outcomes without importing utils.
var (
	ErrTokenExpired = utils.ErrTokenExpired
	ErrTokenInvalid = utils.ErrTokenInvalid
)

// ErrTokenNotFound is returned when a refresh token has no backing row:
// it was revoked, already rotated by a concurrent request, or swept.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrUserNotFound is returned when an access token verifies but its
// subject no longer resolves to a user record.
var ErrUserNotFound = errors.New("user not found")

// TokenStore is the persistence surface the token service needs.
type TokenStore interface {
	Store(ctx context.Context, t model.RefreshToken) error
	Find(ctx context.Context, token string) (model.RefreshToken, error)
	Delete(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserGetter resolves access-token claims to a user record.
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// TokenService issues, validates, rotates and revokes the paired
// credentials. Access tokens are stateless; refresh tokens are backed by a
// row in the token store keyed by value.
type TokenService struct {
	tokens        TokenStore
	users         UserGetter
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(tokens TokenStore, users UserGetter, accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *TokenService {
	return &TokenService{
		tokens:        tokens,
		users:         users,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     time.Duration(accessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// Issue mints a new access/refresh pair for the identity and persists the
// refresh row. The row is stored before the pair is returned; if the store
// write fails no credentials are handed out.
func (s *TokenService) Issue(ctx context.Context, userID uint64, email string) (model.TokenPair, error) {
	return s.IssueWithTTL(ctx, userID, email, s.accessTTL, s.refreshTTL)
}

// IssueWithTTL is Issue with explicit lifetimes, used by tests and by the
// signin path when short-lived pairs are wanted.
func (s *TokenService) IssueWithTTL(ctx context.Context, userID uint64, email string, accessTTL, refreshTTL time.Duration) (model.TokenPair, error) {
	access, _, err := utils.NewSignedToken(s.accessSecret, userID, email, accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("encoding access token: %w", err)
	}
	refresh, refreshExp, err := utils.NewSignedToken(s.refreshSecret, userID, email, refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("encoding refresh token: %w", err)
	}
	row := model.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		UserEmail: email,
		ExpiresAt: refreshExp,
	}
	if err := s.tokens.Store(ctx, row); err != nil {
		return model.TokenPair{}, fmt.Errorf("saving refresh token: %w", err)
	}
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		UserEmail:    email,
		ExpiresAt:    refreshExp,
	}, nil
}

// ValidateAccess decodes an access token and resolves its user.
// ErrTokenExpired is a distinct outcome so callers can prompt a refresh
// instead of a re-login.
func (s *TokenService) ValidateAccess(ctx context.Context, token string) (model.User, error) {
	claims, err := utils.ParseToken(s.accessSecret, token)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}

// Rotate exchanges a refresh token for a fresh pair. The old row is
// deleted before the new pair is issued; the conditional delete makes
// concurrent rotations of the same token race safely — exactly one wins,
// the rest see ErrTokenNotFound.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	row, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TokenPair{}, ErrTokenNotFound
		}
		return model.TokenPair{}, fmt.Errorf("looking up refresh token: %w", err)
	}
	if _, err := utils.ParseToken(s.refreshSecret, refreshToken); err != nil {
		return model.TokenPair{}, err
	}
	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("deleting rotated token: %w", err)
	}
	if !deleted {
		// Lost the race to a concurrent rotation.
		return model.TokenPair{}, ErrTokenNotFound
	}
	return s.Issue(ctx, row.UserID, row.UserEmail)
}

// Revoke deletes the refresh row and reports whether one existed.
// Idempotent: revoking an unknown token is not an error.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) (bool, error) {
	return s.tokens.Delete(ctx, refreshToken)
}

// SweepExpired removes every refresh row past its expiry and returns the
// count. Run once at process start.
func (s *TokenService) SweepExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, time.Now().UTC())
}
