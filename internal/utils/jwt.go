package utils // package utils provides helper functions for token creation

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // auth identities
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs an HS256 token shaped like the ones the identity
// provider issues: sub is the auth UUID, the provider's own role claim is
// "authenticated" and the application role sits in user_metadata.role.
// Production tokens come from the provider; this exists for local
// development and tests.
func NewAccessToken(secret string, authID uuid.UUID, role string, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":           authID.String(),
        "role":          "authenticated",
        "user_metadata": map[string]interface{}{"role": role},
        "exp":           exp.Unix(),
        "iat":           now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
