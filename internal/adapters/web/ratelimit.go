package web

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis, applied to
// the credential endpoints. With no Redis configured it becomes a no-op so
// single-node deployments still work.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *zap.SugaredLogger
}

func NewRateLimiter(addr string, limit int, window time.Duration, log *zap.SugaredLogger) *RateLimiter {
	if addr == "" {
		return &RateLimiter{}
	}
	return &RateLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		limit:  limit,
		window: window,
		log:    log,
	}
}

// Middleware limits requests per client IP. Redis errors fail open: an
// unavailable limiter must not take logins down with it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl.client == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:auth:%s:%d", ip, time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			rl.log.Warnw("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(r.Context(), key, rl.window)
		}
		if count > int64(rl.limit) {
			writeError(w, r, "muitas tentativas, tente novamente mais tarde", "RATE_LIMITED", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the address the limiter keys on. Only the first hop of
// X-Forwarded-For is used, and only when it parses as an IP; anything else
// falls back to the connection's remote address so a forged header cannot
// mint fresh limiter keys per request.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
