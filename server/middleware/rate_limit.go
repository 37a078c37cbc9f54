package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters лимитеры по IP клиента
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (cl *clientLimiters) get(clientIP string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	limiter, ok := cl.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters[clientIP] = limiter
	}
	return limiter
}

// GinRateLimitMiddleware ограничивает частоту запросов на клиентский IP.
// Превышение лимита возвращает 429 без обработки запроса.
func GinRateLimitMiddleware(requestsPerSecond float64, burst int) gin.HandlerFunc {
	cl := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	return func(c *gin.Context) {
		if !cl.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   true,
				"message": "Rate limit exceeded, retry later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
