package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/handler"
	"github.com/cartier55/coachbox-backend/internal/model"
)

type memComments struct {
	nextID uint64
	rows   map[uint64]model.Comment
}

func newMemComments() *memComments {
	return &memComments{nextID: 1, rows: map[uint64]model.Comment{}}
}

func (m *memComments) Insert(_ context.Context, coachID uint64, text string, date time.Time) (model.Comment, error) {
	c := model.Comment{ID: m.nextID, CoachID: coachID, Text: text, Date: date}
	m.rows[c.ID] = c
	m.nextID++
	return c, nil
}

func (m *memComments) GetByID(_ context.Context, id uint64) (model.Comment, error) {
	c, ok := m.rows[id]
	if !ok {
		return model.Comment{}, sql.ErrNoRows
	}
	return c, nil
}

func (m *memComments) FindByDay(_ context.Context, dayStart time.Time) ([]model.CommentWithCoach, error) {
	end := dayStart.Add(24 * time.Hour)
	var out []model.CommentWithCoach
	for _, c := range m.rows {
		if !c.Date.Before(dayStart) && c.Date.Before(end) {
			out = append(out, model.CommentWithCoach{
				Comment:   c,
				CoachInfo: model.CoachInfo{FirstName: "Dana", LastName: "Reyes", Email: "dana@box.test", ImageURL: "/uploads/pfp/dana.png"},
			})
		}
	}
	return out, nil
}

func (m *memComments) FindAll(_ context.Context) ([]model.CommentWithCoach, error) {
	var out []model.CommentWithCoach
	for _, c := range m.rows {
		out = append(out, model.CommentWithCoach{Comment: c})
	}
	return out, nil
}

func (m *memComments) UpdateText(_ context.Context, id uint64, text string) (model.Comment, error) {
	c, ok := m.rows[id]
	if !ok {
		return model.Comment{}, sql.ErrNoRows
	}
	c.Text = text
	m.rows[id] = c
	return c, nil
}

func (m *memComments) Delete(_ context.Context, id uint64) (bool, error) {
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

func commentCtx(t *testing.T, method, target, body string, user *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if user != nil {
		c.Set("current_user", user)
	}
	return c, rec
}

func TestCreateCommentStampsAuthorAndDate(t *testing.T) {
	store := newMemComments()
	h := handler.NewCommentHandler(store)
	coach := &model.User{ID: 7, FirstName: "Dana"}

	c, rec := commentCtx(t, http.MethodPost, "/v1/comments", `{"text":"PVC pipes are back in the closet"}`, coach)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(7), got.CoachID)
	assert.WithinDuration(t, time.Now().UTC(), got.Date, 5*time.Second)
	assert.Equal(t, "PVC pipes are back in the closet", got.Text)
}

func TestCreateCommentRejectsEmptyText(t *testing.T) {
	h := handler.NewCommentHandler(newMemComments())
	c, rec := commentCtx(t, http.MethodPost, "/v1/comments", `{"text":"   "}`, &model.User{ID: 7})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCommentsByDayTrimsImagePath(t *testing.T) {
	store := newMemComments()
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	_, err := store.Insert(context.Background(), 7, "morning note", day.Add(9*time.Hour))
	require.NoError(t, err)
	_, err = store.Insert(context.Background(), 7, "next-day note", day.Add(30*time.Hour))
	require.NoError(t, err)

	h := handler.NewCommentHandler(store)
	c, rec := commentCtx(t, http.MethodGet, "/v1/comments?date=2026-08-24", "", &model.User{ID: 7})
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.CommentWithCoach
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "morning note", got[0].Text)
	// Authors' pictures come back as bare filenames.
	assert.Equal(t, "dana.png", got[0].CoachInfo.ImageURL)
}

func TestUpdateCommentRequiresOwnership(t *testing.T) {
	store := newMemComments()
	owned, err := store.Insert(context.Background(), 7, "my note", time.Now().UTC())
	require.NoError(t, err)

	h := handler.NewCommentHandler(store)
	intruder := &model.User{ID: 8}

	c, rec := commentCtx(t, http.MethodPut, "/v1/comments/"+strconv.FormatUint(owned.ID, 10), `{"text":"hijacked"}`, intruder)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(owned.ID, 10))
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You don't have permission to update this comment")

	// The row is untouched.
	kept, err := store.GetByID(context.Background(), owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "my note", kept.Text)
}

func TestDeleteCommentRequiresOwnership(t *testing.T) {
	store := newMemComments()
	owned, err := store.Insert(context.Background(), 7, "my note", time.Now().UTC())
	require.NoError(t, err)

	h := handler.NewCommentHandler(store)

	c, rec := commentCtx(t, http.MethodDelete, "/v1/comments/1", "", &model.User{ID: 8})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = commentCtx(t, http.MethodDelete, "/v1/comments/1", "", &model.User{ID: 7})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = store.GetByID(context.Background(), owned.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCommentNotFound(t *testing.T) {
	h := handler.NewCommentHandler(newMemComments())

	c, rec := commentCtx(t, http.MethodGet, "/v1/comments/99", "", &model.User{ID: 7})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.GetOne(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Comment not found")
}
