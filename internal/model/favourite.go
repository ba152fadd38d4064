package model

import (
    "time"

    "github.com/google/uuid"
)

// Favourite marks a doula as saved by a mother.  A mother can favourite
// a doula at most once.
type Favourite struct {
    ID           uint64    `gorm:"primaryKey" json:"id"`
    MotherAuthID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uq_mother_doula_fav,priority:1" json:"mother_auth_id"`
    DoulaID      uint64    `gorm:"not null;uniqueIndex:uq_mother_doula_fav,priority:2;index" json:"doula_id"`
    CreatedAt    time.Time `json:"created_at"`
}
