package router // route registration for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cartier55/coachbox-backend/internal/handler"
	"github.com/cartier55/coachbox-backend/internal/middleware"
)

// Deps gathers everything route registration needs. The Redis client may
// be nil; caching and throttling then degrade to pass-throughs.
type Deps struct {
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	Admin    *handler.AdminHandler
	Comments *handler.CommentHandler
	WS       *handler.WSHandler
	Redis    *redis.Client
}

// Register wires every route group onto the Echo instance.
func Register(e *echo.Echo, d Deps) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth operations. Sign-in is throttled because it is
	// the only endpoint that grinds bcrypt on attacker-supplied input.
	auth := e.Group("/v1/auth")
	auth.POST("/signup", d.Auth.Signup, middleware.RateLimit(d.Redis, 10, time.Minute))
	auth.POST("/signin", d.Auth.Signin, middleware.RateLimit(d.Redis, 10, time.Minute))
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/signout", d.Auth.Signout)

	// Everything under /v1 past this point needs a valid access token.
	// The Auth middleware also refreshes the caller's presence record.
	authed := e.Group("/v1")
	authed.Use(middleware.Auth(d.Auth.Tokens, d.Auth.Presence))

	authed.GET("/me", d.Auth.Me)
	authed.PATCH("/me", d.Auth.UpdateDetails)
	authed.GET("/me/image", d.Auth.GetImage)

	events := authed.Group("/events")
	events.GET("/month", d.Events.EventsForMonth)
	events.GET("/range", d.Events.EventsInRange)
	events.GET("/weekly-hours", d.Events.WeeklyHours)
	events.GET("/next", d.Events.NextEvents)
	// The projection is pure read and the heaviest query in the app, so
	// it sits behind the response cache.
	events.GET("/time-slots", d.Events.GetTimeSlots, middleware.ResponseCache(d.Redis, time.Minute))

	// Coach day-notes, shown alongside the schedule.
	comments := authed.Group("/comments")
	comments.POST("", d.Comments.Create)
	comments.GET("", d.Comments.List)
	comments.GET("/:id", d.Comments.GetOne)
	comments.PUT("/:id", d.Comments.Update)
	comments.DELETE("/:id", d.Comments.Delete)

	// Staff-only schedule mutation and roster endpoints.
	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/verify", d.Admin.Verify)
	admin.GET("/users", d.Admin.GetUsers)
	admin.POST("/events", d.Events.CreateOrUpdate)
	admin.POST("/events/empty", d.Events.CreateEmptyEvent)
	admin.POST("/events/import", d.Events.ImportShifts)
	admin.POST("/api-keys", d.Admin.GenerateAPIKey)
	admin.GET("/programming", d.Admin.GetProgrammingMaterials)

	// The newsletter automation authenticates with an API key, not a
	// session, so the ingest hook lives outside the authed group.
	e.POST("/v1/hooks/programming", d.Admin.UpdateProgrammingMaterials,
		middleware.APIKey(d.Admin.Keys.Exists))

	// Live presence feed for admin dashboards; auth happens in-band.
	e.GET("/v1/ws", d.WS.Serve)
}
