// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that moves them.
package queue

import (
    "time"

    "github.com/iliyamo/doulacare/internal/model"
)

// Routing keys on the booking topic exchange.
const (
    KeyBookingRequested     = "booking.requested"
    KeyBookingStatusChanged = "booking.status_changed"
    KeyBookingPaid          = "booking.paid"
)

// BookingEvent is published whenever a booking is created, has its status
// overwritten or is promoted to paid by a payment.  It carries enough for
// downstream consumers to log or notify without querying the database.
type BookingEvent struct {
    Event          string `json:"event"`
    BookingID      uint64 `json:"booking_id"`
    MotherID       uint64 `json:"mother_id"`
    DoulaID        uint64 `json:"doula_id"`
    Status         string `json:"status"`
    PreviousStatus string `json:"previous_status,omitempty"`
    Mode           string `json:"mode"`
    StartsAt       string `json:"starts_at"`
    EndsAt         string `json:"ends_at"`
    OccurredAt     string `json:"occurred_at"`
}

// NewBookingEvent snapshots b under the given routing key.
func NewBookingEvent(key string, b model.Booking, previous string) BookingEvent {
    return BookingEvent{
        Event:          key,
        BookingID:      b.ID,
        MotherID:       b.MotherID,
        DoulaID:        b.DoulaID,
        Status:         b.Status,
        PreviousStatus: previous,
        Mode:           b.Mode,
        StartsAt:       b.StartsAt.Format(time.RFC3339),
        EndsAt:         b.EndsAt.Format(time.RFC3339),
        OccurredAt:     time.Now().UTC().Format(time.RFC3339),
    }
}
