package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	timeout "github.com/vearne/gin-timeout"
	"golang.org/x/time/rate"

	"github.com/invoicebox/backend/dto"
)

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg("Request timeout"),
	)
}

const (
	rateLimiterCacheSize = 10_000
	rateLimiterIdleTTL   = 15 * time.Minute
)

// ClientRateLimiter keeps a token bucket per client ip. Buckets of clients that have not been
// seen for a while are evicted, which resets them.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

func NewClientRateLimiter(perSecond float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](rateLimiterCacheSize, nil, rateLimiterIdleTTL),
	}
}

func (l *ClientRateLimiter) limiterOf(clientIp string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok := l.limiters.Get(clientIp); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(clientIp, limiter)
	return limiter
}

func (l *ClientRateLimiter) Middleware(c *gin.Context) {
	if !l.limiterOf(c.ClientIP()).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.APIErrorResponse{
			Message:   "too many attempts, retry later",
			ErrorCode: dto.TooManyRequests,
		})
		return
	}
	c.Next()
}
