package config

// This file defines the Redis client constructor.  Redis backs three optional
// features: distributed rate limiting, the response cache on discovery
// endpoints, and the ledger of processed payment webhook events.  When the
// server cannot be reached at startup the constructor returns nil and every
// one of those features degrades to a pass-through.

import (
    "context"
    "crypto/tls"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.  Addr wins over Host/Port.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig reads REDIS_ADDR (or REDIS_HOST + REDIS_PORT),
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "")
    if addr == "" {
        host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", "")
        if host != "" && port != "" {
            addr = host + ":" + port
        }
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    return RedisConfig{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
        TLS:      envBool("REDIS_TLS", false),
    }
}

// NewRedisClient connects using cfg and pings with a short timeout.  It
// returns nil when the ping fails so callers can disable Redis features.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{ServerName: strings.Split(cfg.Addr, ":")[0]}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
