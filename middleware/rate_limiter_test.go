package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newLimitedServer(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.Use(rl.RateLimit())
	e.POST("/triggers/garage_bookings", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func postFrom(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/triggers/garage_bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	e := newLimitedServer(NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		if rec := postFrom(e, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := postFrom(e, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	// other senders keep their own budget
	if rec := postFrom(e, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other sender status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterCleanupDropsIdleSenders(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")

	rl.cleanup(time.Now())
	if len(rl.visitors) != 1 {
		t.Fatalf("visitors = %d, want 1 before idle timeout", len(rl.visitors))
	}

	rl.cleanup(time.Now().Add(rl.idleTimeout + time.Second))
	if len(rl.visitors) != 0 {
		t.Errorf("visitors = %d, want 0 after idle timeout", len(rl.visitors))
	}
}
