package service

import (
	"context"
	"errors"
	"sync"
)

type published struct {
	key string
	v   any
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, v: v})
	return p.err
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

// fakeGateway returns canned results and records checkout requests.
type fakeGateway struct {
	checkouts []CheckoutRequest
	event     WebhookEvent
	parseErr  error
	intentRef string
	intentErr error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	g.checkouts = append(g.checkouts, req)
	return "https://checkout.example/s/1", nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, signature string) (WebhookEvent, error) {
	if g.parseErr != nil {
		return WebhookEvent{}, g.parseErr
	}
	if signature == "" {
		return WebhookEvent{}, errors.New("missing signature")
	}
	return g.event, nil
}

func (g *fakeGateway) BookingIDForPaymentIntent(context.Context, string) (string, error) {
	return g.intentRef, g.intentErr
}

// memLedger is an in-memory EventLedger.
type memLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemLedger() *memLedger { return &memLedger{seen: map[string]bool{}} }

func (l *memLedger) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *memLedger) Record(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = true
	return nil
}
