package middleware

import (
    "bytes"
    "context"
    "encoding/hex"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/fxamacker/cbor/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/zeebo/blake3"

    "github.com/iliyamo/cinema-admin/internal/config"
)

// captureWriter copies the response body while forwarding it to the
// client.  Once more than limit bytes were written the copy is dropped
// and the response is not cached.
type captureWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.overflow {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.overflow = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is the value stored in Redis.
type cachedResponse struct {
    Status int         `cbor:"1,keyasint"`
    Header http.Header `cbor:"2,keyasint"`
    Body   []byte      `cbor:"3,keyasint"`
}

var cacheEncMode, _ = cbor.CoreDetEncOptions().EncMode()

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    return cacheEncMode.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

func decodePayload(bs []byte) (cachedResponse, bool) {
    var cr cachedResponse
    if err := cbor.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
        return cachedResponse{}, false
    }
    return cr, true
}

// generationKey holds a counter that every successful write increments.
// It is part of each cache key, so a write orphans every cached read at
// once and the orphans expire with their TTL.
func generationKey(cfg config.CacheConfig) string { return cfg.Prefix + ":gen" }

// cacheKeyFrom builds "<prefix>:<generation>:<blake3 of the request>".
func cacheKeyFrom(cfg config.CacheConfig, gen int64, c echo.Context) string {
    r := c.Request()
    route := c.Path()
    query := r.URL.RawQuery

    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", route}
    case "method_route":
        parts = []string{"method", r.Method, "route", route}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", route, "q", query}
    default: // "route_query"
        parts = []string{"route", route, "q", query}
    }
    // Path parameters are not part of c.Path(); the raw path keeps
    // /movies/1 and /movies/2 apart.
    parts = append(parts, "path", r.URL.Path)

    sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
    return cfg.Prefix + ":" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:16])
}

// ResponseCache caches successful responses of the configured methods in
// Redis.  A successful write through its middleware, or a call to
// Invalidate, orphans every entry cached so far.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewResponseCache returns a cache that does nothing when caching is
// disabled or rdb is nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
    if !cfg.Enabled {
        rdb = nil
    }
    return &ResponseCache{cfg: cfg, rdb: rdb}
}

// Invalidate bumps the generation counter.  Code that writes records
// without passing through the cached routes (registration, the admin
// CLI) calls it so cached lists do not outlive the write.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
    if rc == nil || rc.rdb == nil {
        return nil
    }
    return rc.rdb.Incr(ctx, generationKey(rc.cfg)).Err()
}

// Middleware serves cached reads and invalidates on successful writes.
// Mount it behind authentication: entries are shared by every caller.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if rc.rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    cfg, rdb := rc.cfg, rc.rdb
    genKey := generationKey(cfg)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            method := strings.ToUpper(c.Request().Method)
            if !cfg.Methods[method] {
                err := next(c)
                if isWrite(method) && err == nil && c.Response().Status < http.StatusBadRequest {
                    if ierr := rc.Invalidate(context.WithoutCancel(c.Request().Context())); ierr != nil {
                        c.Logger().Warnf("cache: bump generation: %v", ierr)
                    }
                }
                return err
            }

            ctx := c.Request().Context()
            gen, err := rdb.Get(ctx, genKey).Int64()
            if err != nil && err != redis.Nil {
                c.Logger().Warnf("cache: read generation: %v", err)
                return next(c)
            }
            key := cacheKeyFrom(cfg, gen, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if cr, ok := decodePayload(bs); ok {
                    for k, vals := range cr.Header {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(cr.Status)
                    _, _ = c.Response().Write(cr.Body)
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.overflow {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderXRequestID)
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
            defer cancel()
            if err := rdb.SetEx(sctx, key, payload, cfg.TTL).Err(); err != nil {
                c.Logger().Warnf("cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

func isWrite(method string) bool {
    switch method {
    case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
        return true
    }
    return false
}
