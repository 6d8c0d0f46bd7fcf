// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	mu             sync.Mutex
	ips            map[string]map[string]*rate.Limiter
	defaultLimit   rate.Limit
	defaultBurst   int
	endpointLimits map[string]endpointLimit
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]map[string]*rate.Limiter),
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		endpointLimits: make(map[string]endpointLimit),
	}

	// Strict limit on login to slow brute-force attempts
	limiter.endpointLimits["/api/auth/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}

	return limiter
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Served media is exempt
			if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
				return next(c)
			}

			path := c.Path()
			limit := r.defaultLimit
			burst := r.defaultBurst
			bucket := "default"
			if override, exists := r.endpointLimits[path]; exists {
				limit = override.limit
				burst = override.burst
				bucket = path
			}

			if !r.getLimiter(c.RealIP(), bucket, limit, burst).Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests",
				})
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) getLimiter(ip, bucket string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, exists := r.ips[ip]
	if !exists {
		buckets = make(map[string]*rate.Limiter)
		r.ips[ip] = buckets
	}

	limiter, exists := buckets[bucket]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		buckets[bucket] = limiter
	}
	return limiter
}
