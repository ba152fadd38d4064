// Package service holds the booking and payment rules that sit between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/doulacare/internal/model"
	"github.com/iliyamo/doulacare/internal/queue"
	"github.com/iliyamo/doulacare/internal/repository"
)

// BookingStore is the subset of repository.BookingRepo the services use.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Booking, error)
	MarkPaidIfConfirmed(ctx context.Context, id uint64) (bool, error)
}

// UserLookup resolves booking participants.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// EventPublisher emits booking lifecycle events.  queue.Publisher
// satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

const publishTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/iliyamo/doulacare/internal/service")

// BookingService creates bookings and moves them between statuses.
type BookingService struct {
	bookings BookingStore
	users    UserLookup
	events   EventPublisher
}

// NewBookingService wires the service.  events may be nil, in which case
// nothing is published.
func NewBookingService(bookings BookingStore, users UserLookup, events EventPublisher) *BookingService {
	if bookings == nil || users == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{bookings: bookings, users: users, events: events}
}

// CreateBookingInput is the client request for a new booking.
type CreateBookingInput struct {
	MotherID uint64    `json:"mother_id"`
	DoulaID  uint64    `json:"doula_id"`
	StartsAt TimeValue `json:"starts_at"`
	EndsAt   TimeValue `json:"ends_at"`
	Mode     string    `json:"mode"`
}

// Create validates the participants and the interval and stores a new
// booking in the requested status.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.create", trace.WithAttributes(
		attribute.Int64("booking.mother_id", int64(in.MotherID)),
		attribute.Int64("booking.doula_id", int64(in.DoulaID)),
	))
	defer span.End()

	mother, err := s.participant(ctx, in.MotherID, model.RoleMother, "Invalid mother_id")
	if err != nil {
		return model.Booking{}, record(span, err)
	}
	doula, err := s.participant(ctx, in.DoulaID, model.RoleDoula, "Invalid doula_id")
	if err != nil {
		return model.Booking{}, record(span, err)
	}

	starts, err := normalize(in.StartsAt, "starts_at")
	if err != nil {
		return model.Booking{}, record(span, err)
	}
	ends, err := normalize(in.EndsAt, "ends_at")
	if err != nil {
		return model.Booking{}, record(span, err)
	}
	if !ends.After(starts) {
		return model.Booking{}, record(span, validationf("ends_at must be after starts_at"))
	}

	mode := strings.TrimSpace(in.Mode)
	if mode == "" {
		mode = model.DefaultMode
	}
	b := model.Booking{
		MotherID:     mother.ID,
		DoulaID:      doula.ID,
		MotherAuthID: mother.AuthID,
		DoulaAuthID:  doula.AuthID,
		StartsAt:     starts,
		EndsAt:       ends,
		Mode:         mode,
		Status:       model.StatusRequested,
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, record(span, err)
	}
	span.SetAttributes(attribute.Int64("booking.id", int64(b.ID)))
	log.Printf("[booking] created id=%d mother=%d doula=%d", b.ID, b.MotherID, b.DoulaID)
	publish(ctx, s.events, queue.NewBookingEvent(queue.KeyBookingRequested, b, ""))
	return b, nil
}

// UpdateStatus overwrites the status of booking id.  Any value of the
// status enumeration is accepted from any current status.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, status string) (model.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.update_status", trace.WithAttributes(
		attribute.Int64("booking.id", int64(id)),
		attribute.String("booking.status", status),
	))
	defer span.End()

	cur, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, record(span, notFound("Booking not found"))
	}
	if err != nil {
		return model.Booking{}, record(span, err)
	}
	if !model.ValidStatus(status) {
		allowed := model.Statuses()
		sort.Strings(allowed)
		return model.Booking{}, record(span, validationf("Invalid status '%s'. Must be one of %s.", status, strings.Join(allowed, ", ")))
	}

	b, err := s.bookings.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, record(span, notFound("Booking not found"))
	}
	if err != nil {
		return model.Booking{}, record(span, err)
	}
	log.Printf("[booking] status id=%d %s -> %s", id, cur.Status, b.Status)
	publish(ctx, s.events, queue.NewBookingEvent(queue.KeyBookingStatusChanged, b, cur.Status))
	return b, nil
}

// participant loads user id and checks it holds role.  A missing user or
// a role mismatch is a validation error carrying msg.
func (s *BookingService) participant(ctx context.Context, id uint64, role, msg string) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, validationf("%s", msg)
	}
	if err != nil {
		return model.User{}, err
	}
	if u.Role != role {
		return model.User{}, validationf("%s", msg)
	}
	return u, nil
}

func normalize(v TimeValue, field string) (time.Time, error) {
	if v.IsZero() {
		return time.Time{}, validationf("%s is required", field)
	}
	t, err := v.Normalize()
	if err != nil {
		return time.Time{}, validationf("Invalid datetime format: %s. Use ISO-8601, e.g. 2025-11-01T14:00:00 or 2025-11-01T14:00:00Z", v.raw)
	}
	return t, nil
}

// publish sends ev when a publisher is configured.  Delivery failures are
// logged and never fail the caller's operation; the request context's
// cancellation is detached so a client hang-up does not drop the event.
func publish(ctx context.Context, events EventPublisher, ev queue.BookingEvent) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := events.PublishJSON(ctx, ev.Event, ev); err != nil {
		log.Printf("[booking] publish %s id=%d failed: %v", ev.Event, ev.BookingID, err)
	}
}

// record marks span as failed for unexpected errors and returns err.
// Client errors from the taxonomy are expected outcomes and only noted.
func record(span trace.Span, err error) error {
	var se *Error
	if errors.As(err, &se) {
		span.SetAttributes(attribute.String("error.kind", se.Kind.Error()))
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprint(err))
	return err
}
