package middlewares

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per key in fixed windows. Expired keys are
// swept at most once per window.
type RateLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	window  time.Duration
	limit   int
	windows map[string]*rateWindow
	swept   time.Time
}

type rateWindow struct {
	used int
	ends time.Time
}

// NewRateLimiter allows limit requests per key per window. A non-positive
// limit disables limiting.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		now:     time.Now,
		limit:   limit,
		window:  window,
		windows: make(map[string]*rateWindow),
	}
}

// allow records one request for key. When it is refused, retry is the time
// left in the key's window.
func (rl *RateLimiter) allow(key string) (ok bool, remaining int, retry time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked(now)

	w, found := rl.windows[key]
	if !found || !now.Before(w.ends) {
		w = &rateWindow{ends: now.Add(rl.window)}
		rl.windows[key] = w
	}

	if w.used >= rl.limit {
		return false, 0, w.ends.Sub(now)
	}

	w.used++
	return true, rl.limit - w.used, 0
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.swept) < rl.window {
		return
	}
	rl.swept = now

	for key, w := range rl.windows {
		if !now.Before(w.ends) {
			delete(rl.windows, key)
		}
	}
}

// RateLimiterMiddleware limits by keyFn, falling back to the client IP when
// keyFn yields nothing.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		ok, remaining, retry := rl.allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// KeyByIP is for unauthenticated routes.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated email so users behind one NAT do
// not share a budget.
func KeyByUserOrIP(c *gin.Context) string {
	if email, ok := EmailFromContext(c); ok && email != "" {
		return "user:" + email
	}
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// honours X-Forwarded-For / X-Real-IP only for trusted proxies
	ip := c.ClientIP()

	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		return host
	}
	return ip
}
