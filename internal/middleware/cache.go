package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/doulacare/internal/config"
)

// captureWriter copies the response body (up to limit bytes) while
// forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
            cw.truncated = true // too large to cache
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is the value stored in Redis.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// routePrefix is the key prefix shared by every entry cached for route, so
// a write can evict them all with one SCAN pattern.
func routePrefix(prefix, route string) string { return prefix + ":" + route + ":" }

// cacheKey hashes the strategy's components under the route's prefix.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "method_route":
        parts = []string{"method", r.Method, "route", c.Path()}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", c.Path(), "path", r.URL.Path, "q", r.URL.RawQuery}
    default: // route_query
        parts = []string{"route", c.Path(), "path", r.URL.Path, "q", r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s%x", routePrefix(cfg.Prefix, c.Path()), sum[:])
}

// NewRedisCache serves repeated reads of public listings from Redis.  Only
// configured methods and 200 responses are cached; bodies above
// MaxBodyBytes are passed through uncached.  With caching disabled or no
// client it is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg, c)

            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(bs, &hit) == nil {
                    for k, vals := range hit.Header {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, c.Response().Header().Get(echo.HeaderContentType), hit.Body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }

            entry := cachedResponse{Status: cw.status, Header: c.Response().Header().Clone(), Body: cw.buf.Bytes()}
            entry.Header.Del("X-Cache")
            if payload, err := json.Marshal(entry); err == nil {
                _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// ResponseCache pairs the read-through cache with eviction on writes.  A
// nil *ResponseCache, or one without Redis, hands out pass-throughs.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
    return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) enabled() bool {
    return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

// Read caches the responses of the route it wraps.
func (rc *ResponseCache) Read() echo.MiddlewareFunc {
    if !rc.enabled() {
        return passthrough
    }
    return NewRedisCache(rc.cfg, rc.rdb)
}

// Evict drops every cached entry of routes once the wrapped handler has
// answered with a 2xx status.  Eviction failures are only logged.
func (rc *ResponseCache) Evict(routes ...string) echo.MiddlewareFunc {
    if !rc.enabled() || len(routes) == 0 {
        return passthrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            if s := c.Response().Status; s < 200 || s > 299 {
                return nil
            }
            for _, route := range routes {
                if err := rc.evictRoute(context.Background(), route); err != nil {
                    log.Printf("[cache] evict %s: %v", route, err)
                }
            }
            return nil
        }
    }
}

func (rc *ResponseCache) evictRoute(ctx context.Context, route string) error {
    var keys []string
    iter := rc.rdb.Scan(ctx, 0, routePrefix(rc.cfg.Prefix, route)+"*", 100).Iterator()
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(keys) == 0 {
        return nil
    }
    return rc.rdb.Del(ctx, keys...).Err()
}
