package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/config"
)

// takeToken atomically refills the bucket at KEYS[1] and spends one token.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens left, ms until the next refill}.
var takeToken = redis.NewScript(`
local b = redis.call('HMGET', KEYS[1], 't', 'ts')
local now, cap, refill, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local tokens, ts = tonumber(b[1]), tonumber(b[2])
if not tokens then
  tokens, ts = cap, now
end
local steps = math.floor(math.max(0, now - ts) / every)
if steps > 0 then
  tokens = math.min(cap, tokens + steps * refill)
  ts = ts + steps * every
end
local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = every - (now - ts)
end
redis.call('HSET', KEYS[1], 't', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

type bucketResult struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

type limiter struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (l limiter) take(ctx context.Context, key string) (bucketResult, error) {
	vals, err := takeToken.Run(ctx, l.rdb, []string{key},
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(vals) != 3 {
		return bucketResult{}, redis.Nil
	}
	return bucketResult{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		wait:      time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key with a Redis token bucket.  It is
// a no-op when disabled or when rdb is nil, and fails open on Redis
// errors.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	l := limiter{cfg: cfg, rdb: rdb}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := l.take(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := int64((res.wait + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			h.Set("Retry-After", strconv.FormatInt(secs, 10))
			log.Debug().Str("key", key).Dur("wait", res.wait).Msg("rate limited")
			return deny(c, http.StatusTooManyRequests, "Too many requests")
		}
	}
}

// rateKey joins the segments named by KeyStrategy, e.g. "ip_route".  An
// empty or unrecognised strategy uses ip, user and route together.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	segment := func(name string) []string {
		switch name {
		case "ip":
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			return []string{"ip", ip}
		case "user":
			return []string{"user", currentUserID(c)}
		case "route":
			return []string{"route", c.Request().Method + " " + c.Path()}
		}
		return nil
	}

	parts := []string{cfg.Prefix}
	for _, name := range strings.Split(strings.ToLower(cfg.KeyStrategy), "_") {
		seg := segment(name)
		if seg == nil {
			parts = parts[:1]
			break
		}
		parts = append(parts, seg...)
	}
	if len(parts) == 1 {
		for _, name := range []string{"ip", "user", "route"} {
			parts = append(parts, segment(name)...)
		}
	}
	return strings.Join(parts, ":")
}
