package model

import (
    "time"

    "github.com/google/uuid"
)

// Message is one private message between a mother and a doula.  A thread
// is identified by the (MotherAuthID, DoulaAuthID) pair regardless of who
// sent the message.
//
// Fields:
//  SenderRole   – mother or doula.
//  ReadByMother – false until the mother opens the thread; true at send
//                 time when she is the sender.
//  ReadByDoula  – same for the doula.
type Message struct {
    ID           uint64    `gorm:"primaryKey" json:"id"`
    MotherAuthID uuid.UUID `gorm:"type:char(36);not null;index:idx_thread,priority:1" json:"mother_auth_id"`
    DoulaAuthID  uuid.UUID `gorm:"type:char(36);not null;index:idx_thread,priority:2" json:"doula_auth_id"`
    SenderRole   string    `gorm:"size:20;not null" json:"sender_role"`
    Text         string    `gorm:"type:text;not null" json:"text"`
    CreatedAt    time.Time `gorm:"index" json:"created_at"`
    ReadByMother bool      `gorm:"not null;default:false" json:"read_by_mother"`
    ReadByDoula  bool      `gorm:"not null;default:false" json:"read_by_doula"`
}
