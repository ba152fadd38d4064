package model

import (
    "time"

    "github.com/google/uuid"
)

// Booking statuses.  The intended progression is requested → confirmed →
// paid, with declined and cancelled as side branches.
const (
    StatusRequested = "requested"
    StatusConfirmed = "confirmed"
    StatusDeclined  = "declined"
    StatusCancelled = "cancelled"
    StatusPaid      = "paid"
)

// DefaultMode is used when a booking request omits the delivery mode.
const DefaultMode = "online"

var statuses = map[string]bool{
    StatusRequested: true,
    StatusConfirmed: true,
    StatusDeclined:  true,
    StatusCancelled: true,
    StatusPaid:      true,
}

// ValidStatus reports whether s belongs to the booking status enumeration.
func ValidStatus(s string) bool { return statuses[s] }

// Statuses returns the enumeration in progression order.
func Statuses() []string {
    return []string{StatusRequested, StatusConfirmed, StatusDeclined, StatusCancelled, StatusPaid}
}

// Booking records a scheduled engagement between a mother and a doula.
// Participants are stored twice: by internal user id (used for joins) and
// by external auth identity (copied from the user rows at creation).
//
// Fields:
//  StartsAt, EndsAt – interval in zone-free UTC; StartsAt < EndsAt.
//  Mode             – delivery mode, e.g. online or home.
//  Status           – one of the Status* constants.
type Booking struct {
    ID           uint64     `gorm:"primaryKey" json:"id"`
    MotherID     uint64     `gorm:"not null;index" json:"mother_id"`
    DoulaID      uint64     `gorm:"not null;index" json:"doula_id"`
    MotherAuthID *uuid.UUID `gorm:"type:char(36);index" json:"mother_auth_id"`
    DoulaAuthID  *uuid.UUID `gorm:"type:char(36);index" json:"doula_auth_id"`
    StartsAt     time.Time  `gorm:"not null" json:"starts_at"`
    EndsAt       time.Time  `gorm:"not null" json:"ends_at"`
    Mode         string     `gorm:"size:20;not null;default:online" json:"mode"`
    Status       string     `gorm:"size:20;not null;default:requested;index" json:"status"`
    CreatedAt    time.Time  `json:"created_at"`
    UpdatedAt    time.Time  `json:"updated_at"`
}
