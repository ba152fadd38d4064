// Package payment adapts the Stripe API to the service.PaymentGateway
// interface and stores processed webhook event ids in Redis.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/iliyamo/doulacare/internal/service"
)

// Stripe talks to Stripe Checkout.  The zero value is not usable; build
// one with NewStripe.
type Stripe struct {
	sessions      session.Client
	webhookSecret string
}

// NewStripe returns a gateway authenticated with secretKey that verifies
// webhooks against webhookSecret.
func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// CreateCheckout opens a one-item payment session and returns its URL.
func (s *Stripe) CreateCheckout(ctx context.Context, req service.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
				UnitAmount: stripe.Int64(req.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", strconv.FormatUint(req.BookingID, 10))

	cs, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return cs.URL, nil
}

// eventObject is the slice of data.object read from either event type.
type eventObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// Events signed for a different API version are still accepted.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (service.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return service.WebhookEvent{}, err
	}
	out := service.WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	var obj eventObject
	if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
		return service.WebhookEvent{}, fmt.Errorf("decode event object: %w", err)
	}
	switch out.Type {
	case service.EventCheckoutCompleted:
		out.BookingID = obj.Metadata["booking_id"]
	case service.EventPaymentIntentSucceeded:
		out.PaymentIntentID = obj.ID
	}
	return out, nil
}

// BookingIDForPaymentIntent returns the booking_id metadata of the first
// checkout session created for paymentIntentID.
func (s *Stripe) BookingIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.CheckoutSessionListParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := s.sessions.List(params)
	if it.Next() {
		return it.CheckoutSession().Metadata["booking_id"], nil
	}
	return "", it.Err()
}
