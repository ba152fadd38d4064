package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/doulacare/internal/handler"    // handlers implementing each endpoint
	"github.com/iliyamo/doulacare/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers the routes that need no dependencies: the
// liveness checks and the checkout redirect targets.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
	e.GET("/payments/success", handler.PaymentSuccess)
	e.GET("/payments/cancel", handler.PaymentCancel)
}

// protect returns the authentication chain for a route: JWTAuth followed
// by RequireRole(roles...).  When no secret is configured authentication
// is disabled and the chain is empty.
func protect(jwtSecret string, roles ...string) []echo.MiddlewareFunc {
	if jwtSecret == "" {
		return nil
	}
	chain := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}
	if len(roles) > 0 {
		chain = append(chain, middleware.RequireRole(roles...))
	}
	return chain
}

// with appends extra middleware to a chain without aliasing it.
func with(chain []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(chain)+len(extra))
	out = append(out, chain...)
	return append(out, extra...)
}

// RegisterUsers registers user management, sign-in bootstrap and the doula
// directory.  cache serves the public directory reads; every user write
// evicts them.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string, cache *middleware.ResponseCache) {
	evict := cache.Evict("/doulas", "/doulas/:id")
	e.POST("/users", h.Create, evict)
	e.GET("/users", h.List)
	e.PUT("/users/:id", h.Update, with(protect(jwtSecret, "mother", "doula"), evict)...)
	e.POST("/users/bootstrap", h.Bootstrap, evict)

	e.GET("/doulas", h.ListDoulas, cache.Read())
	e.GET("/doulas/:id", h.GetDoula, cache.Read())
}
