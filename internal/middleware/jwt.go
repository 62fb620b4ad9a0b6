package middleware // reusable HTTP middleware shared by the protected route groups

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/service"
)

// userContextKey is where the authenticated user is stored on the Echo
// context. Handlers retrieve it through CurrentUser.
const userContextKey = "current_user"

// Auth returns an Echo middleware that validates a Bearer access token,
// loads the token's user and injects it into the request context. Expired
// tokens get a distinguishing X-Expired response header so clients know to
// attempt a refresh instead of forcing a new sign-in. Every authenticated
// request also refreshes the user's presence record; that write is silent
// and never fails the request.
func Auth(tokens *service.TokenService, presence *service.PresenceTracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			user, err := tokens.ValidateAccess(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					// The header is the contract: clients watch for it to
					// trigger a rotation with their refresh token.
					c.Response().Header().Set("X-Expired", "True")
					return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Could not validate credentials"})
			}
			if user.Disabled {
				return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Inactive user"})
			}

			c.Set(userContextKey, &user)

			if presence != nil {
				if err := presence.Touch(c.Request().Context(), user.ID); err != nil {
					log.Printf("presence: touch for user %d failed: %v", user.ID, err)
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by Auth, or nil when
// the route is not protected.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

// RequireAdmin aborts with 403 unless the authenticated user holds an
// enabled admin account. It assumes Auth ran earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.CanAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{"detail": "Admin privileges required"})
			}
			return next(c)
		}
	}
}
