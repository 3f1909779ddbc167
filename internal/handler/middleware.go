package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// APIKeyAuth returns a Gin middleware that enforces X-API-Key header validation.
// If key is empty, the middleware is a no-op (auth disabled).
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
			return
		}
		if provided != key {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}

const clientIdleTTL = 15 * time.Minute

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client IP. Buckets idle for
// longer than clientIdleTTL are dropped.
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientEntry
	limit     rate.Limit
	burst     int
	onDeny    func(reason string)
	now       func() time.Time
	lastSweep time.Time
}

// NewClientLimiter allows perMinute requests per client, with bursts of up
// to the same size. onDeny may be nil.
func NewClientLimiter(perMinute int, onDeny func(reason string)) *ClientLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &ClientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		onDeny:  onDeny,
		now:     time.Now,
	}
}

func (l *ClientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= clientIdleTTL {
		l.sweep(now)
	}
	ent, ok := l.clients[key]
	if !ok {
		ent = &clientEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = ent
	}
	ent.lastSeen = now
	return ent.lim
}

// sweep drops idle buckets. Callers hold mu.
func (l *ClientLimiter) sweep(now time.Time) {
	cutoff := now.Add(-clientIdleTTL)
	for key, ent := range l.clients {
		if ent.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *ClientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			if l.onDeny != nil {
				l.onDeny("rate")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many scan requests"})
			return
		}
		c.Next()
	}
}
