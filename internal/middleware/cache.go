package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/config"
)

// recorder forwards the response and keeps a copy of up to limit bytes.
type recorder struct {
	http.ResponseWriter
	status  int
	body    bytes.Buffer
	written int64
	limit   int64
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.written += int64(len(b))
	if !r.truncated() {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *recorder) truncated() bool { return r.limit > 0 && r.written > r.limit }

// cachedResponse is the value stored under a cache key.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

func (cr cachedResponse) replay(c echo.Context) error {
	h := c.Response().Header()
	for k, vals := range cr.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		h[k] = vals
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	_, err := c.Response().Write(cr.Body)
	return err
}

// cacheKey hashes the parts selected by KeyStrategy.  Path parameters are
// always included.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var b strings.Builder
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strings.HasPrefix(strategy, "method_") {
		b.WriteString(r.Method)
		b.WriteByte('|')
	}
	b.WriteString(c.Path())
	if strategy == "" || strings.HasSuffix(strategy, "_query") {
		b.WriteByte('?')
		b.WriteString(r.URL.RawQuery)
	}
	for i, name := range c.ParamNames() {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		if vals := c.ParamValues(); i < len(vals) {
			b.WriteString(vals[i])
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:16])
}

// NewRedisCache serves repeated public reads from Redis.  Only 200
// responses no larger than MaxBodyBytes are stored.  Entries are not
// invalidated on writes; they expire after TTL.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
					return hit.replay(c)
				}
			}

			rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.truncated() {
				return nil
			}
			entry := cachedResponse{Status: rec.status, Header: c.Response().Header().Clone(), Body: rec.body.Bytes()}
			entry.Header.Del("X-Cache")
			raw, err := json.Marshal(entry)
			if err != nil {
				return nil
			}
			// the request context may already be cancelled once the body is sent
			if err := rdb.Set(context.Background(), key, raw, ttl).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("response cache write failed")
			}
			return nil
		}
	}
}
