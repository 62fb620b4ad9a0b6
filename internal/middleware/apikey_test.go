package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/middleware"
)

func callAPIKey(lookup middleware.APIKeyFunc, key string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/programming", nil)
	if key != "" {
		req.Header.Set("api-key", key)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.APIKey(lookup)(func(c echo.Context) error {
		return c.String(http.StatusOK, "in")
	})
	_ = handler(c)
	return rec
}

func TestAPIKeyValid(t *testing.T) {
	lookup := func(_ context.Context, key string) (bool, error) {
		return key == "good-key", nil
	}
	rec := callAPIKey(lookup, "good-key")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "in", rec.Body.String())
}

func TestAPIKeyMissing(t *testing.T) {
	lookup := func(context.Context, string) (bool, error) { return true, nil }
	rec := callAPIKey(lookup, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyUnknown(t *testing.T) {
	lookup := func(context.Context, string) (bool, error) { return false, nil }
	rec := callAPIKey(lookup, "wrong-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIKeyLookupErrorClosesGate(t *testing.T) {
	lookup := func(context.Context, string) (bool, error) {
		return false, errors.New("db down")
	}
	rec := callAPIKey(lookup, "any-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
