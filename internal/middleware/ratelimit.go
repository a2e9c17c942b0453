package middleware

import (
    "context"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/cinema-admin/internal/config"
)

// decision is the outcome of one token bucket check.
type decision struct {
    allowed    bool
    remaining  int64
    retryAfter time.Duration
}

type limiter interface {
    take(ctx context.Context, key string) (decision, error)
}

// tokenBucketScript refills and takes one token atomically.  State lives
// in a hash per key so that every server instance shares the bucket.
var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end

    local allowed = 0
    local retry_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_ms }
`)

type redisLimiter struct {
    rdb *redis.Client
    cfg config.RateLimitConfig
}

func (l redisLimiter) take(ctx context.Context, key string) (decision, error) {
    vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{key},
        time.Now().UnixMilli(),
        l.cfg.Capacity,
        l.cfg.RefillTokens,
        l.cfg.RefillInterval.Milliseconds(),
        int64(l.cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return decision{}, err
    }
    if len(vals) != 3 {
        return decision{}, redis.Nil
    }
    return decision{
        allowed:    vals[0] == 1,
        remaining:  vals[1],
        retryAfter: time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

// localLimiter keeps one x/time/rate limiter per key in memory.  Keys
// idle for longer than the configured TTL are swept once a minute.
type localLimiter struct {
    cfg config.RateLimitConfig

    mu      sync.Mutex
    clients map[string]*localClient
    swept   time.Time
}

type localClient struct {
    limiter  *rate.Limiter
    lastSeen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
    return &localLimiter{cfg: cfg, clients: make(map[string]*localClient), swept: time.Now()}
}

func (l *localLimiter) take(_ context.Context, key string) (decision, error) {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    if now.Sub(l.swept) > time.Minute {
        for k, cl := range l.clients {
            if now.Sub(cl.lastSeen) > l.cfg.TTL {
                delete(l.clients, k)
            }
        }
        l.swept = now
    }

    cl, ok := l.clients[key]
    if !ok {
        every := l.cfg.RefillInterval / time.Duration(l.cfg.RefillTokens)
        cl = &localClient{limiter: rate.NewLimiter(rate.Every(every), l.cfg.Capacity)}
        l.clients[key] = cl
    }
    cl.lastSeen = now

    r := cl.limiter.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{retryAfter: delay}, nil
    }
    return decision{allowed: true, remaining: int64(cl.limiter.TokensAt(now))}, nil
}

// NewTokenBucket limits requests per client key.  With a Redis client the
// bucket is shared across instances; with rdb == nil each process keeps
// its own buckets.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var lim limiter
    if rdb != nil {
        lim = redisLimiter{rdb: rdb, cfg: cfg}
    } else {
        lim = newLocalLimiter(cfg)
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := lim.take(c.Request().Context(), key)
            if err != nil {
                c.Logger().Warnf("ratelimit: key=%s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }

            if !d.allowed {
                secs := int(math.Ceil(d.retryAfter.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("ratelimit: block key=%s retry=%s", key, d.retryAfter)
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := clientKey(c)
    route := c.Request().Method + " " + c.Path()

    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "ip_user_route":
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    default: // "ip_user"
        parts = append(parts, "ip", ip, "user", uid)
    }
    return strings.Join(parts, ":")
}
