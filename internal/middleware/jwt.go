package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys set by JWTAuth.
const (
    CtxAuthID = "auth_id" // subject of the token: the user's external auth UUID
    CtxRole   = "role"    // application role: mother, doula or admin
    CtxToken  = "user"    // the parsed *jwt.Token
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the external identity provider and injects the subject and the
// application role into the request context.  The provider signs with
// HS256 using the project's JWT secret; the application role lives in the
// user_metadata claim because the top-level role claim is the provider's
// own ("authenticated").  When secret is empty the middleware is a
// pass-through so the API can run without an identity provider locally.
func JWTAuth(secret string) echo.MiddlewareFunc {
    if secret == "" {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Only HMAC signatures are accepted; anything else is rejected
            // before the key is handed out.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            sub, _ := claims["sub"].(string)
            if sub == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(CtxToken, tok)
            c.Set(CtxAuthID, sub)
            c.Set(CtxRole, roleFromClaims(claims))
            return next(c)
        }
    }
}

// roleFromClaims prefers user_metadata.role and falls back to app_metadata
// and finally the top-level role claim.
func roleFromClaims(claims jwt.MapClaims) string {
    for _, k := range []string{"user_metadata", "app_metadata"} {
        if md, ok := claims[k].(map[string]interface{}); ok {
            if r, ok := md["role"].(string); ok && r != "" {
                return r
            }
        }
    }
    r, _ := claims["role"].(string)
    return r
}
