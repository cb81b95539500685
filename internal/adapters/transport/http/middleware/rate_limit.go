package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewHTTPRateLimitPerIP ограничивает RPS для Gin-ручек c LRU-кэшем IP.
// Очистка неактивных IP живёт, пока не закрыт stop.
func NewHTTPRateLimitPerIP(
	limit, burst, cacheSize int,
	ttl time.Duration,
	stop <-chan struct{},
) gin.HandlerFunc {

	visitors, _ := lru.New[string, *visitor](cacheSize)
	var mu sync.Mutex

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				mu.Lock()
				for _, key := range visitors.Keys() {
					if v, ok := visitors.Peek(key); ok && time.Since(v.last) > ttl {
						visitors.Remove(key)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		mu.Lock()
		v, ok := visitors.Get(host)
		if !ok {
			v = &visitor{
				limiter: rate.NewLimiter(rate.Limit(limit), burst),
			}
			visitors.Add(host, v)
		}
		v.last = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
