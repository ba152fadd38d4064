package handler // handler defines http handlers

import (
    "errors"   // errors.Is/As for mapping domain errors
    "log"      // unexpected failures are logged before answering 500
    "net/http" // status codes
    "strconv"  // numeric path and query parameters

    "github.com/google/uuid"      // auth identities in paths and queries
    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/doulacare/internal/repository"
    "github.com/iliyamo/doulacare/internal/service"
)

// errJSON writes the error envelope used by every endpoint.
func errJSON(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"error": msg})
}

// respondError maps service and repository errors onto HTTP statuses.
// Anything unrecognised is logged and reported as 500 without detail.
func respondError(c echo.Context, err error) error {
    var se *service.Error
    if errors.As(err, &se) {
        switch {
        case errors.Is(se.Kind, service.ErrNotFound):
            return errJSON(c, http.StatusNotFound, se.Message)
        default: // validation, invalid state and webhook authentication
            return errJSON(c, http.StatusBadRequest, se.Message)
        }
    }
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return errJSON(c, http.StatusNotFound, "not found")
    case errors.Is(err, repository.ErrForbidden):
        return errJSON(c, http.StatusForbidden, "forbidden")
    case errors.Is(err, repository.ErrConflict):
        return errJSON(c, http.StatusConflict, "conflict")
    case errors.Is(err, repository.ErrInvalidRole):
        return errJSON(c, http.StatusBadRequest, "Invalid role")
    case errors.Is(err, service.ErrPaymentsDisabled):
        return errJSON(c, http.StatusServiceUnavailable, err.Error())
    }
    log.Printf("[http] %s %s: %v", c.Request().Method, c.Path(), err)
    return errJSON(c, http.StatusInternalServerError, "internal error")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    return n, err == nil && n > 0
}

// pathUUID parses a UUID path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
    id, err := uuid.Parse(c.Param(name))
    return id, err == nil
}

// queryUUID parses a required UUID query parameter.
func queryUUID(c echo.Context, name string) (uuid.UUID, bool) {
    id, err := uuid.Parse(c.QueryParam(name))
    return id, err == nil
}

// queryFloat parses an optional float query parameter.  A present but
// malformed value reports ok=false.
func queryFloat(c echo.Context, name string) (*float64, bool) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, true
    }
    f, err := strconv.ParseFloat(raw, 64)
    if err != nil {
        return nil, false
    }
    return &f, true
}

// queryBool parses an optional bool query parameter, returning def when
// it is absent.
func queryBool(c echo.Context, name string, def bool) (bool, bool) {
    raw := c.QueryParam(name)
    if raw == "" {
        return def, true
    }
    b, err := strconv.ParseBool(raw)
    return b, err == nil
}
