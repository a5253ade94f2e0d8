// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dkarpov/manufacturer-api/internal/handler"
	"github.com/dkarpov/manufacturer-api/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication: the
// plain-text liveness root and the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the signup and signin endpoints under /api/auth.
// The limiter guards both against credential stuffing; it is a
// pass-through when rate limiting is disabled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/signup", a.Signup)
	g.POST("/signin", a.Signin)
}

// RegisterCatalog registers the manufacturer and nested product endpoints
// under /api/manufacturers.  Every route requires a valid Bearer token;
// GET responses additionally flow through the response cache when one is
// configured.  Echo requires a single param name per path segment, so the
// manufacturer id is :id on the nested product routes too.
func RegisterCatalog(e *echo.Echo, m *handler.ManufacturerHandler, p *handler.ProductHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/manufacturers")
	g.Use(middleware.JWTAuth(jwtSecret))
	if cache != nil {
		g.Use(cache)
	}

	g.POST("", m.Create)
	g.GET("", m.List)
	g.GET("/:id", m.Get)
	g.PUT("/:id", m.Update)
	g.DELETE("/:id", m.Delete)

	g.POST("/:id/products", p.Add)
	g.GET("/:id/products", p.List)
	g.GET("/:id/products/:productId", p.Get)
	g.PUT("/:id/products/:productId", p.Update)
	g.DELETE("/:id/products/:productId", p.Delete)
}
