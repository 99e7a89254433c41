package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/handler"
	"github.com/iliyamo/distributor-orders/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login, token rotation and logout. None of these
// sit behind the gate.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterUsers registers account management. Records are addressed by
// ?id= so every method shares the /users path.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler) {
	e.GET("/users", u.List)
	e.POST("/users", u.Create)
	e.PUT("/users", u.Update)
	e.PATCH("/users", u.Update)
	e.DELETE("/users", u.Delete)
}

// RegisterProducts registers the catalog. Reads go through the response
// cache; every mutation purges it in the service.
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, cache *middleware.ResponseCache) {
	cached := cache.Middleware()
	e.GET("/products", p.List, cached)
	e.GET("/products/:id", p.Get, cached)
	e.POST("/products", p.Create)
	e.PUT("/products/:id", p.Update)
	e.DELETE("/products/:id", p.Delete)
}

// RegisterOrders registers order placement, listing and the admin
// attribute updates.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler) {
	e.POST("/orders", o.Create)
	e.GET("/orders", o.List)
	e.GET("/orders/my", o.Mine)
	e.GET("/orders/export", o.Export)
	e.PATCH("/orders/:id/status", o.UpdateStatus)
	e.PATCH("/orders/:id/type", o.UpdateType)
}

// RegisterMedia mounts the upload signature endpoint.
func RegisterMedia(e *echo.Echo, m *handler.MediaHandler) {
	e.POST("/cloudinary-signature", m.Signature)
}
