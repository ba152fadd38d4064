package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends JSON events to a durable topic exchange over one
// long-lived channel.  amqp channels are not safe for concurrent
// publishing, so PublishJSON serialises on mu.
type Publisher struct {
    conn     *amqp.Connection
    ch       *amqp.Channel
    exchange string
    mu       sync.Mutex
}

// NewPublisher dials url and declares exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, fmt.Errorf("dial rabbitmq: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("declare exchange: %w", err)
    }
    return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishJSON marshals v and publishes it persistently under key.
func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
    body, err := json.Marshal(v)
    if err != nil {
        return err
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
}

func (p *Publisher) Close() error {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        return p.conn.Close()
    }
    return nil
}
