package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/model"
    "github.com/iliyamo/doulacare/internal/repository"
    "github.com/iliyamo/doulacare/internal/service"
)

// BookingHandler exposes booking creation, status changes and the
// per-participant booking views.  Writes go through the booking service;
// the views read the repositories directly.
type BookingHandler struct {
    Service  *service.BookingService
    Bookings *repository.BookingRepo
    Users    *repository.UserRepo
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(svc *service.BookingService, bookings *repository.BookingRepo, users *repository.UserRepo) *BookingHandler {
    if svc == nil || bookings == nil || users == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Service: svc, Bookings: bookings, Users: users}
}

// Create handles POST /bookings.  starts_at and ends_at accept ISO-8601
// strings (with or without offset) or Unix seconds.
func (h *BookingHandler) Create(c echo.Context) error {
    var in service.CreateBookingInput
    if err := c.Bind(&in); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    b, err := h.Service.Create(c.Request().Context(), in)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// List handles GET /bookings.
func (h *BookingHandler) List(c echo.Context) error {
    out, err := h.Bookings.List(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid booking id")
    }
    b, err := h.Bookings.GetByID(c.Request().Context(), id)
    if errors.Is(err, repository.ErrNotFound) {
        return errJSON(c, http.StatusNotFound, "Booking not found")
    }
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// UpdateStatus handles POST /bookings/:id/status with body {"status": ...}.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid booking id")
    }
    var body struct {
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    b, err := h.Service.UpdateStatus(c.Request().Context(), id, body.Status)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// motherBookingView is a booking as listed to the mother who made it.
type motherBookingView struct {
    BookingID uint64    `json:"booking_id"`
    DoulaName *string   `json:"doula_name"`
    Verified  *bool     `json:"verified"`
    StartsAt  time.Time `json:"starts_at"`
    EndsAt    time.Time `json:"ends_at"`
    Mode      string    `json:"mode"`
    Status    string    `json:"status"`
}

// doulaBookingView is a booking as listed to the doula it is addressed to.
type doulaBookingView struct {
    BookingID  uint64    `json:"booking_id"`
    MotherName *string   `json:"mother_name"`
    DoulaName  string    `json:"doula_name"`
    Location   *string   `json:"location"`
    StartsAt   time.Time `json:"starts_at"`
    EndsAt     time.Time `json:"ends_at"`
    Mode       string    `json:"mode"`
    Status     string    `json:"status"`
}

// ByMother handles GET /bookings/by-mother/:id/details.
func (h *BookingHandler) ByMother(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid mother id")
    }
    ctx := c.Request().Context()
    mother, err := h.Users.GetByID(ctx, id)
    return h.motherView(ctx, c, mother, err, "Mother not found")
}

// ByMotherAuth handles GET /bookings/by-mother-auth/:uuid/details.
func (h *BookingHandler) ByMotherAuth(c echo.Context) error {
    authID, ok := pathUUID(c, "uuid")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid auth id")
    }
    ctx := c.Request().Context()
    mother, err := h.Users.GetByAuthID(ctx, authID)
    return h.motherView(ctx, c, mother, err, "Mother not found for this auth_id")
}

// ByDoula handles GET /bookings/by-doula/:id.
func (h *BookingHandler) ByDoula(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid doula id")
    }
    ctx := c.Request().Context()
    doula, err := h.Users.GetByID(ctx, id)
    return h.doulaView(ctx, c, doula, err, "Doula not found")
}

// ByDoulaAuth handles GET /bookings/by-doula-auth/:uuid.
func (h *BookingHandler) ByDoulaAuth(c echo.Context) error {
    authID, ok := pathUUID(c, "uuid")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid auth id")
    }
    ctx := c.Request().Context()
    doula, err := h.Users.GetByAuthID(ctx, authID)
    return h.doulaView(ctx, c, doula, err, "Doula not found for this auth_id")
}

func (h *BookingHandler) motherView(ctx context.Context, c echo.Context, mother model.User, err error, notFound string) error {
    if errors.Is(err, repository.ErrNotFound) || (err == nil && mother.Role != model.RoleMother) {
        return errJSON(c, http.StatusNotFound, notFound)
    }
    if err != nil {
        return respondError(c, err)
    }
    bookings, err := h.Bookings.ListByMother(ctx, mother.ID)
    if err != nil {
        return respondError(c, err)
    }
    doulas, err := h.Users.GetByIDs(ctx, collect(bookings, func(b model.Booking) uint64 { return b.DoulaID }))
    if err != nil {
        return respondError(c, err)
    }
    out := make([]motherBookingView, 0, len(bookings))
    for _, b := range bookings {
        v := motherBookingView{BookingID: b.ID, StartsAt: b.StartsAt, EndsAt: b.EndsAt, Mode: b.Mode, Status: b.Status}
        if d, ok := doulas[b.DoulaID]; ok {
            v.DoulaName, v.Verified = &d.Name, &d.Verified
        }
        out = append(out, v)
    }
    return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) doulaView(ctx context.Context, c echo.Context, doula model.User, err error, notFound string) error {
    if errors.Is(err, repository.ErrNotFound) || (err == nil && doula.Role != model.RoleDoula) {
        return errJSON(c, http.StatusNotFound, notFound)
    }
    if err != nil {
        return respondError(c, err)
    }
    bookings, err := h.Bookings.ListByDoula(ctx, doula.ID)
    if err != nil {
        return respondError(c, err)
    }
    mothers, err := h.Users.GetByIDs(ctx, collect(bookings, func(b model.Booking) uint64 { return b.MotherID }))
    if err != nil {
        return respondError(c, err)
    }
    out := make([]doulaBookingView, 0, len(bookings))
    for _, b := range bookings {
        v := doulaBookingView{BookingID: b.ID, DoulaName: doula.Name, StartsAt: b.StartsAt, EndsAt: b.EndsAt, Mode: b.Mode, Status: b.Status}
        if m, ok := mothers[b.MotherID]; ok {
            v.MotherName, v.Location = &m.Name, m.Location
        }
        out = append(out, v)
    }
    return c.JSON(http.StatusOK, out)
}

// collect maps items to ids, dropping duplicates.
func collect[T any, K comparable](items []T, key func(T) K) []K {
    seen := make(map[K]struct{}, len(items))
    out := make([]K, 0, len(items))
    for _, it := range items {
        k := key(it)
        if _, ok := seen[k]; !ok {
            seen[k] = struct{}{}
            out = append(out, k)
        }
    }
    return out
}
