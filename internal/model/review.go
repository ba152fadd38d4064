package model

import "time"

// Review is left by a mother after a paid booking.  MotherID and DoulaID
// are copied from the booking so reviews can be listed per doula without
// a join.
type Review struct {
    ID        uint64    `gorm:"primaryKey" json:"id"`
    BookingID uint64    `gorm:"not null;index" json:"booking_id"`
    MotherID  uint64    `gorm:"not null" json:"mother_id"`
    DoulaID   uint64    `gorm:"not null;index" json:"doula_id"`
    Rating    int       `gorm:"not null" json:"rating"`
    Comment   *string   `gorm:"type:text" json:"comment"`
    CreatedAt time.Time `gorm:"index" json:"created_at"`
}
