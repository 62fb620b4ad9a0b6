package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/config"
	"github.com/cartier55/coachbox-backend/internal/middleware"
	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/queue"
	"github.com/cartier55/coachbox-backend/internal/repository"
	"github.com/cartier55/coachbox-backend/internal/service"
	"github.com/cartier55/coachbox-backend/internal/utils"
)

// refreshCookieName is the HttpOnly cookie carrying the refresh token.
// Browsers present it automatically on /auth/refresh so the long-lived
// credential never sits in client-side storage.
const refreshCookieName = "refresh_token"

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *service.TokenService
	Presence *service.PresenceTracker
	Notify   *queue.Publisher
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *service.TokenService, presence *service.PresenceTracker, notify *queue.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Presence: presence, Notify: notify}
}

// ----- DTOs -----

type signupReq struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Role      string `json:"role" form:"role"`
}
type signinReq struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
	ImageURL  string `json:"image_url,omitempty"`
}
type tokenResp struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userPart `json:"user"`
}

func userToPart(u model.User) userPart {
	return userPart{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsAdmin:   u.IsAdmin,
		ImageURL:  u.ImageURL,
	}
}

// Signup creates a coach account. New accounts start inactive and
// unwelcomed; their first sign-in flips both and announces them on the
// live channel.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "email and password required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin {
		role = model.RoleCoach
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.FirstName, req.LastName, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create user failed"})
	}

	if err := h.Notify.UserSignedUp(ctx, uid, req.Email); err != nil {
		log.Printf("auth: signup notification failed: %v", err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "load user failed"})
	}
	return c.JSON(http.StatusCreated, userToPart(u))
}

// Signin verifies credentials and returns an access token. The paired
// refresh token travels back in an HttpOnly cookie. A successful sign-in
// also marks the user present, which may emit a welcome broadcast.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "incorrect email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "incorrect email or password"})
	}
	if u.Disabled {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Inactive user"})
	}

	pair, err := h.Tokens.Issue(ctx, u.ID, u.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "issue tokens failed"})
	}

	if err := h.Presence.MarkSignedIn(ctx, u); err != nil {
		log.Printf("presence: sign-in update for user %d failed: %v", u.ID, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
		User:        userToPart(u),
	})
}

// Refresh rotates the refresh token presented in the cookie (or, for
// non-browser clients, the request body) and returns a fresh pair. The
// failure modes are distinct on the wire: an expired token gets the
// X-Refresh-Expired header so clients prompt a re-login, an unknown or
// forged token gets a plain 401 and loses its cookie (a token that lost a
// concurrent rotation race reads as unknown here, which is exactly the
// signal a stolen-then-reused token produces), and a store outage is a
// 500 that leaves the cookie alone — the credential is still good once
// the database is back.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "refresh token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Tokens.Rotate(ctx, raw)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTokenExpired):
		c.Response().Header().Set("X-Refresh-Expired", "True")
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Refresh token expired"})
	case errors.Is(err, service.ErrTokenNotFound), errors.Is(err, service.ErrTokenInvalid):
		h.clearRefreshCookie(c)
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid refresh token"})
	default:
		log.Printf("auth: refresh rotation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not refresh tokens"})
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": pair.AccessToken,
		"token_type":   "bearer",
	})
}

// Signout revokes the presented refresh token and clears the cookie.
// Revoking an already-gone token still succeeds.
func (h *AuthHandler) Signout(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if _, err := h.Tokens.Revoke(ctx, raw); err != nil {
			log.Printf("auth: revoke on signout failed: %v", err)
		}
	}
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"detail": "signed out"})
}

type updateDetailsReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	ImageURL  *string `json:"image_url"`
}

// UpdateDetails applies a partial update to the signed-in user's profile
// and returns the updated record.
func (h *AuthHandler) UpdateDetails(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var req updateDetailsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if req.FirstName == nil && req.LastName == nil && req.Email == nil && req.ImageURL == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "no fields to update"})
	}
	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &lowered
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Users.UpdateDetails(ctx, user.ID, repository.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, userToPart(updated))
}

// GetImage returns the signed-in user's avatar URL.
func (h *AuthHandler) GetImage(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, echo.Map{"image_url": user.ImageURL})
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, userToPart(*user))
}

func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&body); err == nil {
		return strings.TrimSpace(body.RefreshToken)
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.Cfg.RefreshTTLDays * 24 * 3600,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
