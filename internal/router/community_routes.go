package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/doulacare/internal/handler"
	"github.com/iliyamo/doulacare/internal/middleware"
)

// RegisterReviews registers review eligibility, creation and listing.
func RegisterReviews(e *echo.Echo, h *handler.ReviewHandler, jwtSecret string, cache *middleware.ResponseCache) {
	e.GET("/reviews/can-review", h.CanReview)
	e.POST("/reviews", h.Create, with(protect(jwtSecret, "mother"), cache.Evict("/reviews/by-doula/:id"))...)
	e.GET("/reviews/by-doula/:id", h.ByDoula, cache.Read())
}

// RegisterFavourites registers the mother's saved doulas.
func RegisterFavourites(e *echo.Echo, h *handler.FavouriteHandler) {
	g := e.Group("/favourites/by-mother-auth/:uuid")
	g.POST("/toggle", h.Toggle)
	g.GET("/details", h.Details)
}

// RegisterMessages registers private messaging.
func RegisterMessages(e *echo.Echo, h *handler.MessageHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/messages")
	g.POST("/send", h.Send, limiter)
	g.GET("/thread", h.Thread)
	g.GET("/unread-count", h.UnreadCount)
	g.POST("/mark-read", h.MarkRead)
	g.GET("/threads", h.Threads)
	g.GET("/inbox", h.Inbox)
}

// RegisterChat registers the community chat websocket.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler) {
	e.GET("/chat", h.Serve)
}

// RegisterMedia registers voice search and file uploads, all throttled by
// limiter.
func RegisterMedia(e *echo.Echo, v *handler.VoiceHandler, u *handler.UploadHandler, limiter echo.MiddlewareFunc) {
	e.POST("/voice-search", v.Search, limiter)
	e.POST("/upload/certificate", u.Certificate, limiter)
	e.POST("/upload/photo", u.Photo, limiter)
}
