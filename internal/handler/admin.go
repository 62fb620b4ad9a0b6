package handler

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/repository"
	"github.com/cartier55/coachbox-backend/internal/service"
)

// AdminHandler serves staff-only endpoints: roster listing, programming
// material ingest and API key management.
type AdminHandler struct {
	Users     *repository.UserRepo
	Keys      *repository.APIKeyRepo
	Materials *service.MaterialsService
}

func NewAdminHandler(users *repository.UserRepo, keys *repository.APIKeyRepo, materials *service.MaterialsService) *AdminHandler {
	return &AdminHandler{Users: users, Keys: keys, Materials: materials}
}

// rosterLimit caps the user listing; the gym's roster is far smaller, the
// cap just keeps a runaway query cheap.
const rosterLimit = 50

type rosterUser struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	Welcomed  bool       `json:"welcomed"`
	LastSeen  *time.Time `json:"last_seen_at,omitempty"`
}

// GetUsers returns the coach roster with live presence flags.
func (h *AdminHandler) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, rosterLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}

	out := make([]rosterUser, 0, len(users))
	for _, u := range users {
		out = append(out, rosterUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			IsActive:  u.IsActive,
			Welcomed:  u.Welcomed,
			LastSeen:  u.LastSeenAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Verify confirms the caller holds an enabled admin account. The route is
// behind the admin middleware, so reaching the handler is the proof.
func (h *AdminHandler) Verify(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"detail": "ok"})
}

// GenerateAPIKey mints a new automation key and persists it. The key is
// shown once in the response; there is no retrieval endpoint.
func (h *AdminHandler) GenerateAPIKey(c echo.Context) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "key generation failed"})
	}
	key := hex.EncodeToString(buf)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Keys.Insert(ctx, key); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "key store failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"api_key": key})
}

type updateMaterialsReq struct {
	HTML       string `json:"html"`
	WeekNumber int    `json:"week_number"`
}

// UpdateProgrammingMaterials ingests a newsletter HTML body: scrape the
// day links and weekly PDF, resolve each video link to its canonical
// share URL, then store the bundle as the current week. The route is
// API-key gated because the caller is the newsletter automation, not a
// signed-in user.
func (h *AdminHandler) UpdateProgrammingMaterials(c echo.Context) error {
	var req updateMaterialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if req.HTML == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "html required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := h.Materials.UpdateFromNewsletter(ctx, req.HTML, req.WeekNumber); err != nil {
		if errors.Is(err, service.ErrMaterialsMissing) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "newsletter has no recognizable materials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "programming materials updated"})
}

// GetProgrammingMaterials returns the stored current-week bundle.
func (h *AdminHandler) GetProgrammingMaterials(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Materials.CurrentWeek(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "no materials stored yet"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, m)
}
