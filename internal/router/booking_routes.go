package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/doulacare/internal/handler"
)

// RegisterBookings registers booking creation, status changes and the
// booking views.  Creating a booking requires the mother role and
// changing its status requires a participant role once authentication is
// enabled; limiter throttles both.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/bookings", h.Create, with(protect(jwtSecret, "mother"), limiter)...)
	e.GET("/bookings", h.List)
	e.GET("/bookings/:id", h.Get)
	e.POST("/bookings/:id/status", h.UpdateStatus, with(protect(jwtSecret, "mother", "doula"), limiter)...)

	e.GET("/bookings/by-mother/:id/details", h.ByMother)
	e.GET("/bookings/by-doula/:id", h.ByDoula)
	e.GET("/bookings/by-mother-auth/:uuid/details", h.ByMotherAuth)
	e.GET("/bookings/by-doula-auth/:uuid", h.ByDoulaAuth)
}

// RegisterPayments registers checkout and the provider webhook.  The
// webhook authenticates by signature, never by bearer token.
func RegisterPayments(e *echo.Echo, h *handler.PaymentHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/payments/checkout", h.Checkout, with(protect(jwtSecret, "mother"), limiter)...)
	e.POST("/payments/webhook", h.Webhook)
}
