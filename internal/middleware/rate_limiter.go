package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// clientWindow counts requests from one client IP in a fixed window.
type clientWindow struct {
	count     int
	windowEnd time.Time
}

// limiter is the per-engine state behind RateLimiter.
type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
	lastGC  time.Time
}

// allow records one request for ip and reports whether it fits in the
// window, plus the window end for Retry-After.
func (l *limiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > 5*l.window {
		l.purge(now)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.windowEnd) {
		w = &clientWindow{windowEnd: now.Add(l.window)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.windowEnd
}

// purge drops expired windows so IPs that never return do not accumulate.
// Caller holds l.mu.
func (l *limiter) purge(now time.Time) {
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.windowEnd) {
			delete(l.clients, ip)
			purged++
		}
	}
	l.lastGC = now
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(l.clients)).
			Msg("rate limiter purged")
	}
}

// RateLimiter allows limit requests per window per client IP. A limit of zero
// or less disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := &limiter{limit: limit, window: window, clients: make(map[string]*clientWindow), lastGC: time.Now()}
	return func(c *gin.Context) {
		now := time.Now()
		ok, windowEnd := l.allow(c.ClientIP(), now)
		if !ok {
			secs := int(windowEnd.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}
