package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// apiKeyHeader is the header automation clients send on machine-to-machine
// endpoints such as the programming ingest hook.
const apiKeyHeader = "api-key"

// APIKeyFunc reports whether an API key exists in the key store.
type APIKeyFunc func(ctx context.Context, key string) (bool, error)

// APIKey returns a middleware that gates a route on a valid api-key
// header. Missing keys get 401, unknown keys 403. Lookup failures are
// treated as unknown keys so a flaky database never opens the gate.
func APIKey(lookup APIKeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(apiKeyHeader)
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "API key required"})
			}
			ok, err := lookup(c.Request().Context(), key)
			if err != nil {
				log.Printf("apikey: lookup failed: %v", err)
				ok = false
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"detail": "Invalid API key"})
			}
			return next(c)
		}
	}
}
