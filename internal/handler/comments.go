package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/middleware"
	"github.com/cartier55/coachbox-backend/internal/model"
)

// CommentStore is the persistence surface the comment endpoints need.
// *repository.CommentRepo satisfies it.
type CommentStore interface {
	Insert(ctx context.Context, coachID uint64, text string, date time.Time) (model.Comment, error)
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	FindByDay(ctx context.Context, dayStart time.Time) ([]model.CommentWithCoach, error)
	FindAll(ctx context.Context) ([]model.CommentWithCoach, error)
	UpdateText(ctx context.Context, id uint64, text string) (model.Comment, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// CommentHandler serves the coach day-note endpoints.
type CommentHandler struct {
	Comments CommentStore
}

func NewCommentHandler(comments CommentStore) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

type commentReq struct {
	Text string `json:"text"`
}

// Create stores a note authored by the signed-in coach, stamped with the
// server's current UTC time.
// POST /comments
func (h *CommentHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
	}

	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "text required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comment, err := h.Comments.Insert(ctx, user.ID, req.Text, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not save comment"})
	}
	return c.JSON(http.StatusCreated, comment)
}

// List returns comments with their author summaries.  With ?date=YYYY-MM-DD
// only the notes stamped within that calendar day come back.
// GET /comments
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		comments []model.CommentWithCoach
		err      error
	)
	if raw := c.QueryParam("date"); raw != "" {
		day, perr := time.Parse(dateLayout, raw)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "date must be YYYY-MM-DD"})
		}
		comments, err = h.Comments.FindByDay(ctx, day)
	} else {
		comments, err = h.Comments.FindAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}

	// Clients render the author's picture by filename only.
	for i := range comments {
		comments[i].CoachInfo.ImageURL = path.Base(comments[i].CoachInfo.ImageURL)
	}
	if comments == nil {
		comments = []model.CommentWithCoach{}
	}
	return c.JSON(http.StatusOK, comments)
}

// GetOne returns a single comment by id.
// GET /comments/:id
func (h *CommentHandler) GetOne(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid comment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comment, err := h.Comments.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Comment not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	return c.JSON(http.StatusOK, comment)
}

// Update rewrites a comment's text.  Only its author may do so.
// PUT /comments/:id
func (h *CommentHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid comment id"})
	}

	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "text required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Comments.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Comment not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	if existing.CoachID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"detail": "You don't have permission to update this comment"})
	}

	updated, err := h.Comments.UpdateText(ctx, id, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not update comment"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a comment.  Only its author may do so.
// DELETE /comments/:id
func (h *CommentHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid comment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Comments.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Comment not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	if existing.CoachID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"detail": "You don't have permission to delete this comment"})
	}

	if _, err := h.Comments.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not delete comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Comment deleted"})
}
