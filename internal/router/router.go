package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/handler"
	"github.com/venuehq/pos-dashboard/internal/middleware"
	"github.com/venuehq/pos-dashboard/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and issues a new access token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body containing a `refresh_token` and
	// invalidates that token.  No JWT is required, so a client with an
	// expired access token can still end its session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleStaff, model.RoleManager))
	auth.GET("/me", a.Me)
}

// RegisterPOS registers the point-of-sale surface: the dashboard, the cart
// mutations and the financial reports.  Every endpoint requires a valid
// access token with a STAFF or MANAGER role; cart state is keyed by the
// authenticated user so two registers never share a cart.
//
// financialsCache is applied only to the financials route.  The dashboard
// embeds live cart state, so caching it would serve stale carts right after
// a POST mutation.
func RegisterPOS(e *echo.Echo, d *handler.DashboardHandler, cart *handler.CartHandler, fin *handler.FinancialsHandler, jwtSecret string, financialsCache echo.MiddlewareFunc) {
	g := e.Group("")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff, model.RoleManager))

	g.GET("/", d.Dashboard)
	g.GET("/financials/", fin.Financials, financialsCache)

	api := g.Group("/api/cart")
	api.POST("/add/", cart.Add)
	api.POST("/update/", cart.Update)
	api.POST("/clear/", cart.Clear)
	api.POST("/checkout/", cart.Checkout)
}

// RegisterAdmin registers the catalog management endpoints under /v1/admin.
// These mutate session types, products and per-session pricing, so they are
// restricted to the MANAGER role.
func RegisterAdmin(e *echo.Echo, catalog *handler.CatalogHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleManager))

	g.GET("/session-types", catalog.ListSessionTypes)
	g.POST("/session-types", catalog.CreateSessionType)
	g.PATCH("/session-types/:id", catalog.UpdateSessionType)
	g.DELETE("/session-types/:id", catalog.DeleteSessionType)

	g.GET("/products", catalog.ListProducts)
	g.POST("/products", catalog.CreateProduct)
	g.PATCH("/products/:id", catalog.UpdateProduct)
	g.DELETE("/products/:id", catalog.DeleteProduct)

	// Price assignments are an upsert keyed by (session_type, product).
	g.PUT("/session-products", catalog.UpsertSessionProduct)

	g.GET("/orders", catalog.ListRecentOrders)
}
