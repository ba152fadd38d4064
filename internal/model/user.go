package model

import (
    "time"

    "github.com/google/uuid"
)

// Roles a user can hold.  Admins moderate doula verification through the
// generic user update endpoint.
const (
    RoleMother = "mother"
    RoleDoula  = "doula"
    RoleAdmin  = "admin"
)

// DefaultUserName is given to users created by bootstrap without a name.
const DefaultUserName = "New user"

// User represents an application user record as stored in the `users`
// table.  Mothers and doulas share the table; the doula-only profile
// fields (price, qualifications, captions...) are simply empty for
// mothers.
//
// Fields:
//  ID       – internal numeric identifier referenced by bookings.
//  AuthID   – opaque identity issued by the external auth provider.  Nil
//             for rows created before the user ever signed in.
//  Role     – one of mother, doula, admin.
//  Verified – doulas only appear in discovery once verified.
//  Price    – per-session price in major currency units.
type User struct {
    ID              uint64     `gorm:"primaryKey" json:"id"`
    AuthID          *uuid.UUID `gorm:"type:char(36);uniqueIndex" json:"auth_id"`
    Name            string     `gorm:"size:120;not null" json:"name"`
    Location        *string    `gorm:"size:190" json:"location"`
    Price           float64    `gorm:"not null;default:0" json:"price"`
    Verified        bool       `gorm:"not null;default:false" json:"verified"`
    Email           *string    `gorm:"size:255" json:"email"`
    Role            string     `gorm:"size:20;not null;default:doula;index" json:"role"`
    Qualifications  *string    `gorm:"type:text" json:"qualifications"`
    Services        *string    `gorm:"type:text" json:"services"`
    IntroVideoURL   *string    `gorm:"size:255" json:"intro_video_url"`
    PriceBundle     *float64   `json:"price_bundle"`
    YearsExperience *int       `json:"years_experience"`
    PhotoURL        *string    `gorm:"size:255" json:"photo_url"`
    CertificateURL  *string    `gorm:"size:255" json:"certificate_url"`
    PriceCaption    *string    `gorm:"size:255" json:"price_caption"`
    BundleCaption   *string    `gorm:"size:255" json:"bundle_caption"`
    CreatedAt       time.Time  `json:"created_at"`
    UpdatedAt       time.Time  `json:"updated_at"`
}

// IsRole reports whether the user holds role r.
func (u *User) IsRole(r string) bool { return u != nil && u.Role == r }
