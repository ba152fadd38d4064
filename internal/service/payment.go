package service

import (
	"context"
	"errors"
	"log"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/doulacare/internal/model"
	"github.com/iliyamo/doulacare/internal/queue"
	"github.com/iliyamo/doulacare/internal/repository"
)

// Webhook event types that can settle a booking.
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
)

// ErrPaymentsDisabled is returned when no payment gateway is configured.
var ErrPaymentsDisabled = errors.New("payments are not configured")

// CheckoutRequest describes one hosted checkout session.
type CheckoutRequest struct {
	BookingID   uint64
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// WebhookEvent is the part of a verified provider event the service acts on.
type WebhookEvent struct {
	ID              string
	Type            string
	BookingID       string // from session metadata, checkout.session.completed only
	PaymentIntentID string // payment_intent.succeeded only
}

// PaymentGateway is the payment provider.  payment.Stripe implements it.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (url string, err error)
	// ParseWebhook verifies signature over payload and decodes the event.
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
	// BookingIDForPaymentIntent finds the checkout session that produced
	// the payment intent and returns its booking_id metadata, or "".
	BookingIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error)
}

// EventLedger remembers provider event ids that were already processed.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string) error
}

// PaymentConfig holds the checkout settings.
type PaymentConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// PaymentService starts checkouts and reconciles provider webhooks with
// booking state.
type PaymentService struct {
	bookings BookingStore
	users    UserLookup
	gateway  PaymentGateway
	ledger   EventLedger
	events   EventPublisher
	cfg      PaymentConfig
}

// NewPaymentService wires the service.  gateway, ledger and events may be
// nil: without a gateway every operation fails with ErrPaymentsDisabled,
// without a ledger redeliveries are absorbed by the status guard alone.
func NewPaymentService(bookings BookingStore, users UserLookup, gateway PaymentGateway, ledger EventLedger, events EventPublisher, cfg PaymentConfig) *PaymentService {
	if bookings == nil || users == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &PaymentService{bookings: bookings, users: users, gateway: gateway, ledger: ledger, events: events, cfg: cfg}
}

// Checkout opens a hosted checkout session for a confirmed booking and
// returns its URL.  Local state is not changed.
func (s *PaymentService) Checkout(ctx context.Context, bookingID uint64) (string, error) {
	ctx, span := tracer.Start(ctx, "payment.checkout", trace.WithAttributes(attribute.Int64("booking.id", int64(bookingID))))
	defer span.End()

	if s.gateway == nil {
		return "", record(span, ErrPaymentsDisabled)
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", record(span, notFound("Booking not found"))
	}
	if err != nil {
		return "", record(span, err)
	}
	if b.Status != model.StatusConfirmed {
		return "", record(span, invalidState("Booking must be confirmed before payment"))
	}
	doula, err := s.users.GetByID(ctx, b.DoulaID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", record(span, validationf("Invalid doula_id"))
	}
	if err != nil {
		return "", record(span, err)
	}

	amount := int64(doula.Price * 100)
	span.SetAttributes(attribute.Int64("payment.amount_cents", amount))
	url, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		BookingID:   b.ID,
		AmountCents: amount,
		Currency:    s.cfg.Currency,
		ProductName: "Consultation with " + doula.Name,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		return "", record(span, err)
	}
	return url, nil
}

// HandleWebhook verifies a provider event and, when it settles a
// confirmed booking, promotes that booking to paid.  Events for bookings
// in any other status are acknowledged without change, so redelivery is
// harmless.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracer.Start(ctx, "payment.webhook")
	defer span.End()

	if s.gateway == nil {
		return record(span, ErrPaymentsDisabled)
	}
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		log.Printf("[webhook] signature verification failed: %v", err)
		return record(span, unauthenticated("Invalid signature"))
	}
	span.SetAttributes(attribute.String("webhook.event_id", ev.ID), attribute.String("webhook.type", ev.Type))
	log.Printf("[webhook] event id=%s type=%s", ev.ID, ev.Type)

	if s.ledger != nil && ev.ID != "" {
		seen, err := s.ledger.Seen(ctx, ev.ID)
		if err != nil {
			log.Printf("[webhook] ledger lookup failed: %v", err)
		} else if seen {
			log.Printf("[webhook] event %s already processed", ev.ID)
			return nil
		}
	}

	var bookingRef string
	switch ev.Type {
	case EventCheckoutCompleted:
		bookingRef = ev.BookingID
	case EventPaymentIntentSucceeded:
		bookingRef, err = s.gateway.BookingIDForPaymentIntent(ctx, ev.PaymentIntentID)
		if err != nil {
			log.Printf("[webhook] could not map payment_intent %s to session: %v", ev.PaymentIntentID, err)
			bookingRef = ""
		}
	}

	if bookingRef != "" {
		if err := s.settle(ctx, bookingRef); err != nil {
			return record(span, err)
		}
	}

	if s.ledger != nil && ev.ID != "" {
		if err := s.ledger.Record(ctx, ev.ID); err != nil {
			log.Printf("[webhook] ledger record failed: %v", err)
		}
	}
	return nil
}

// settle promotes the referenced booking from confirmed to paid.
// Unparseable references are logged and ignored.
func (s *PaymentService) settle(ctx context.Context, ref string) error {
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		log.Printf("[webhook] ignoring malformed booking_id %q", ref)
		return nil
	}
	promoted, err := s.bookings.MarkPaidIfConfirmed(ctx, id)
	if err != nil {
		return err
	}
	if !promoted {
		log.Printf("[webhook] booking %d not confirmed; left unchanged", id)
		return nil
	}
	log.Printf("[webhook] booking %d marked paid", id)
	if b, err := s.bookings.GetByID(ctx, id); err == nil {
		publish(ctx, s.events, queue.NewBookingEvent(queue.KeyBookingPaid, b, model.StatusConfirmed))
	}
	return nil
}
