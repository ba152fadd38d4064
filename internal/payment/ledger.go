package payment

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultLedgerTTL covers Stripe's retry window for undelivered events.
const DefaultLedgerTTL = 72 * time.Hour

// RedisLedger records processed webhook event ids with SETNX and a TTL.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger returns a ledger storing keys under prefix.
func NewRedisLedger(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLedger {
	if prefix == "" {
		prefix = "webhook:event:"
	}
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &RedisLedger{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Seen reports whether eventID was recorded.
func (l *RedisLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.prefix+eventID).Result()
	return n > 0, err
}

// Record marks eventID as processed.  Recording twice is harmless.
func (l *RedisLedger) Record(ctx context.Context, eventID string) error {
	return l.rdb.SetNX(ctx, l.prefix+eventID, time.Now().UTC().Unix(), l.ttl).Err()
}
