package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/repository"
)

// ReviewHandler lets mothers review doulas after a paid booking.
type ReviewHandler struct {
    Reviews  *repository.ReviewRepo
    Bookings *repository.BookingRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, bookings *repository.BookingRepo) *ReviewHandler {
    if reviews == nil || bookings == nil {
        panic("nil repository passed to NewReviewHandler")
    }
    return &ReviewHandler{Reviews: reviews, Bookings: bookings}
}

// CanReview handles GET /reviews/can-review?mother_id=&doula_id=.
func (h *ReviewHandler) CanReview(c echo.Context) error {
    motherID, err1 := strconv.ParseUint(c.QueryParam("mother_id"), 10, 64)
    doulaID, err2 := strconv.ParseUint(c.QueryParam("doula_id"), 10, 64)
    if err1 != nil || err2 != nil {
        return errJSON(c, http.StatusBadRequest, "mother_id and doula_id are required")
    }
    b, err := h.Bookings.FindPaid(c.Request().Context(), motherID, doulaID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusOK, echo.Map{"can_review": false, "booking_id": nil})
    }
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"can_review": true, "booking_id": b.ID})
}

// Create handles POST /reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
    var body struct {
        BookingID uint64  `json:"booking_id"`
        Rating    int     `json:"rating"`
        Comment   *string `json:"comment"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    if body.Rating < 1 || body.Rating > 5 {
        return errJSON(c, http.StatusBadRequest, "rating must be between 1 and 5")
    }
    rev, err := h.Reviews.Create(c.Request().Context(), body.BookingID, body.Rating, body.Comment)
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return errJSON(c, http.StatusNotFound, "Booking not found")
    case errors.Is(err, repository.ErrForbidden):
        return errJSON(c, http.StatusForbidden, "You can only review after a paid booking.")
    case err != nil:
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, rev)
}

// publicReview is the part of a review shown on doula profiles.
type publicReview struct {
    ID        uint64    `json:"id"`
    Rating    int       `json:"rating"`
    Comment   *string   `json:"comment"`
    CreatedAt time.Time `json:"created_at"`
}

// ByDoula handles GET /reviews/by-doula/:id, newest first.
func (h *ReviewHandler) ByDoula(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid doula id")
    }
    reviews, err := h.Reviews.ListByDoula(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]publicReview, 0, len(reviews))
    for _, r := range reviews {
        out = append(out, publicReview{ID: r.ID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
    }
    return c.JSON(http.StatusOK, out)
}
