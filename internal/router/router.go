package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/stagebook/internal/config"
	"github.com/iliyamo/stagebook/internal/handler"    // handlers that translate HTTP into workflow calls
	"github.com/iliyamo/stagebook/internal/middleware" // JWT authentication, role checks, cache and rate limiting
	"github.com/iliyamo/stagebook/internal/model"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Venues        *handler.VenueHandler
	Events        *handler.EventHandler
	Performances  *handler.PerformanceHandler
	Bookings      *handler.BookingHandler
	Notifications *handler.NotificationHandler
	Public        *handler.PublicHandler
}

// Options carries the settings of the Redis-backed middleware.  A nil
// Redis client turns both the page cache and the rate limiter off.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Protected returns the /v1 group that requires a valid access token
// carrying one of the two marketplace roles.
func Protected(e *echo.Echo, jwtSecret string) *echo.Group {
	return e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleVenue, model.RoleArtist))
}

// RegisterAuth registers the account endpoints.  Register and login are
// rate limited per client IP; /v1/me lives on the protected group.
func RegisterAuth(e *echo.Echo, g *echo.Group, a *handler.AuthHandler, opts Options) {
	open := e.Group("/v1/auth", middleware.TokenBucket(opts.RateLimit, opts.Redis))
	open.POST("/register", a.Register)
	open.POST("/login", a.Login)

	g.GET("/me", a.Me)
}

// RegisterWorkflow registers the authenticated marketplace endpoints on
// the protected group.  Ownership is checked by the services against the
// resolved principal, so both roles reach most routes.
func RegisterWorkflow(g *echo.Group, h Handlers) {
	// Venues owned by the caller
	venue := middleware.RequireRole(model.RoleVenue)
	g.GET("/venues", h.Venues.ListVenues, venue)
	g.POST("/venues", h.Venues.CreateVenue, venue)

	// Events and venue approval
	g.POST("/events", h.Events.CreateEvent)
	g.GET("/events/:id", h.Events.GetEvent)
	g.PATCH("/events/:id", h.Events.UpdateEvent)
	g.PATCH("/events/:id/status", h.Events.ChangeStatus)
	g.DELETE("/events/:id", h.Events.DeleteEvent)
	g.POST("/events/:id/artists", h.Events.AddArtist)
	g.POST("/events/:id/venue-request", h.Events.RequestVenue)
	g.POST("/events/:id/approve", h.Events.ApproveEvent)
	g.POST("/events/:id/decline", h.Events.DeclineEvent)

	// Performances
	g.POST("/events/:id/performances", h.Performances.Apply)
	g.PATCH("/performances/:id", h.Performances.Decide)

	// Bookings; the direct booking request is a venue operation.
	g.POST("/bookings", h.Bookings.CreateBooking, venue)
	g.GET("/bookings", h.Bookings.ListBookings)
	g.POST("/bookings/:id/accept", h.Bookings.AcceptBooking)
	g.POST("/bookings/:id/decline", h.Bookings.DeclineBooking)
	g.POST("/bookings/:id/cancel", h.Bookings.CancelBooking)

	// Artist unavailability
	artist := middleware.RequireRole(model.RoleArtist)
	g.GET("/unavailability", h.Bookings.ListUnavailability, artist)
	g.POST("/unavailability", h.Bookings.AddUnavailability, artist)
	g.DELETE("/unavailability/:id", h.Bookings.DeleteUnavailability, artist)

	// Inbox
	g.GET("/notifications", h.Notifications.ListUnread)
	g.PATCH("/notifications/read-all", h.Notifications.MarkAllRead)
	g.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	g.GET("/approvals", h.Notifications.PendingApprovals)
}

// RegisterPublic registers the unauthenticated event pages behind the
// Redis page cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, opts Options) {
	g := e.Group("/v1/public", middleware.PageCache(opts.Cache, opts.Redis))
	g.GET("/events", p.ListEvents)
	g.GET("/events/slug/:slug", p.GetEventBySlug)
	g.GET("/events/:id", p.GetEvent)
}

// Register mounts every route group.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterRoutes(e, h.Health)
	g := Protected(e, opts.JWTSecret)
	RegisterAuth(e, g, h.Auth, opts)
	RegisterWorkflow(g, h)
	RegisterPublic(e, h.Public, opts)
}
