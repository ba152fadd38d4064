package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig names the broker objects the booking log consumer binds.
type ConsumerConfig struct {
    URL      string
    Exchange string
    Queue    string
    LogDir   string // defaults to "logs"
}

// StartBookingConsumer connects to RabbitMQ, binds Queue to every
// booking.* key on Exchange and appends each event to LogDir/booking.log
// in a single-line, human-friendly format.  It reconnects with backoff
// until ctx is cancelled, then returns ctx.Err().
func StartBookingConsumer(ctx context.Context, cfg ConsumerConfig) error {
    if cfg.LogDir == "" {
        cfg.LogDir = "logs"
    }
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(cfg.URL)
        if err != nil {
            log.Printf("[booking-consumer] failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, cfg)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("[booking-consumer] consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("[booking-consumer] set QoS failed: %v", err)
    }
    if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
        return fmt.Errorf("exchange declare: %w", err)
    }
    q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(q.Name, "booking.*", cfg.Exchange, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }

    msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(cfg.LogDir, d.Body); err != nil {
            log.Printf("[booking-consumer] handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(dir string, body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev BookingEvent) string {
    status := ev.Status
    if ev.PreviousStatus != "" {
        status = ev.PreviousStatus + "->" + ev.Status
    }
    return fmt.Sprintf("[%s] %s | booking_id=%d | mother_id=%d | doula_id=%d | status=%s | mode=%s | starts=%s | ends=%s\n",
        ev.OccurredAt, ev.Event, ev.BookingID, ev.MotherID, ev.DoulaID, status, ev.Mode, ev.StartsAt, ev.EndsAt)
}
