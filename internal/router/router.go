package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-house/internal/handler"
	"github.com/iliyamo/auction-house/internal/middleware"
	"github.com/iliyamo/auction-house/internal/model"
)

// Deps carries everything route registration needs.  RateLimit and Cache
// are pre-built middleware and may be pass-throughs when Redis is not
// available.
type Deps struct {
	Auth      *handler.AuthHandler
	Auctions  *handler.AuctionHandler
	Admin     *handler.AdminHandler
	Validator middleware.TokenValidator
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes wires the full API surface onto the provided Echo
// instance.  Everything lives under /api except the health check.  The
// auth gate protects every mutating marketplace operation; browsing
// endpoints stay public so guests can inspect auctions before signing up.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api", d.RateLimit)

	// Unauthenticated: account creation and login.
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)

	// Unauthenticated browsing.  The listing endpoint is the hottest read
	// path and sits behind the Redis response cache.
	api.GET("/auction", d.Auctions.List, d.Cache)
	api.GET("/auction/:item_id", d.Auctions.Get)
	api.GET("/auction/:item_id/bids", d.Auctions.BidHistory)

	// Everything below requires a valid bearer token.  The gate resolves
	// the caller's identity and stores it in the request context; the
	// handlers never touch token internals.
	auth := api.Group("", middleware.BearerAuth(d.Validator))
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me)
	auth.GET("/users/:id", d.Admin.GetUser)

	// Marketplace operations gated by role flags.
	auth.POST("/auction", d.Auctions.Create,
		middleware.RequireRole("Seller privileges required", func(r model.Roles) bool { return r.IsSeller }))
	auth.PUT("/auction/:item_id", d.Auctions.Edit)
	auth.POST("/auction/:item_id/bid", d.Auctions.PlaceBid,
		middleware.RequireRole("Buyer privileges required", func(r model.Roles) bool { return r.IsBuyer }))

	// Admin operations: blocking accounts, approving items, reports.
	auth.POST("/users/:id/block", d.Admin.BlockUser, middleware.RequireAdmin)
	auth.POST("/users/:id/unblock", d.Admin.UnblockUser, middleware.RequireAdmin)
	auth.POST("/auction/:item_id/approve", d.Auctions.Approve, middleware.RequireAdmin)
	auth.GET("/auction_report", d.Admin.AuctionReport, middleware.RequireAdmin)

	// Super admin only: creating admins and deleting accounts.
	auth.POST("/create_admin", d.Admin.CreateAdmin, middleware.RequireSuperAdmin)
	auth.DELETE("/users/:id", d.Admin.DeleteUser, middleware.RequireSuperAdmin)
}
