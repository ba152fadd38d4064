package middleware

// identity.go holds the helpers that read the caller's identity from the
// Echo context once JWTAuth has run.

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

// AuthID returns the caller's auth UUID.  ok is false for anonymous
// requests and for subjects that are not UUIDs.
func AuthID(c echo.Context) (uuid.UUID, bool) {
    s, _ := c.Get(CtxAuthID).(string)
    if s == "" {
        return uuid.Nil, false
    }
    id, err := uuid.Parse(s)
    if err != nil {
        return uuid.Nil, false
    }
    return id, true
}

// Role returns the caller's application role or "".
func Role(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}

// callerKey identifies the caller for rate limiting.  Anonymous callers
// share the "anon" bucket component and are told apart by IP.
func callerKey(c echo.Context) string {
    if s, ok := c.Get(CtxAuthID).(string); ok && s != "" {
        return s
    }
    return "anon"
}
