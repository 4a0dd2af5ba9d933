// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/booking_notifier/models"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles trigger deliveries per sender address. Rejected events
// get a 429 so the event source redelivers them later.
type RateLimiter struct {
	visitors    map[string]*visitor
	mu          *sync.Mutex
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		mu:          &sync.Mutex{},
		limit:       rate.Limit(rps),
		burst:       burst,
		idleTimeout: 10 * time.Minute,
	}
}

// StartCleanup drops limiters of senders idle for longer than the idle timeout
// until stop is closed.
func (r *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.cleanup(time.Now())
			case <-stop:
				return
			}
		}
	}()
}

func (r *RateLimiter) cleanup(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.idleTimeout {
			delete(r.visitors, ip)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := r.getLimiter(c.RealIP())
			if !limiter.Allow() {
				retryAfter := time.Duration(float64(time.Second) / float64(r.limit))
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Status:  http.StatusTooManyRequests,
					Message: "Too many requests",
				})
			}
			return next(c)
		}
	}
}

func (r *RateLimiter) getLimiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}
