package routes

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/booking_notifier/controllers"
	"github.com/HSouheill/booking_notifier/services"
)

func setupRouter(t *testing.T, middlewares ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	var triggers []*controllers.TriggerController
	for _, category := range services.BookingCategories() {
		notifier := services.NewStatusNotifier(category, nil, time.Second)
		notifier.SetLogger(log.New(io.Discard, "", 0))
		triggers = append(triggers, controllers.NewTriggerController(notifier))
	}
	e := echo.New()
	SetupRoutes(e, "firestore", triggers, middlewares...)
	return e
}

func TestStatusEndpoints(t *testing.T) {
	e := setupRouter(t)

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"store":"firestore"`) {
		t.Errorf("health body = %s", rec.Body.String())
	}
}

func TestTriggerRoutesAreRegisteredPerCollection(t *testing.T) {
	e := setupRouter(t)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		if r.Method == http.MethodPost {
			registered[r.Path] = true
		}
	}
	for _, path := range []string{"/triggers/garage_bookings", "/triggers/rental_bookings"} {
		if !registered[path] {
			t.Errorf("route POST %s not registered", path)
		}
	}
}

func TestTriggerMiddlewaresApplyOnlyToTriggers(t *testing.T) {
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.NoContent(http.StatusForbidden)
		}
	}
	e := setupRouter(t, deny)

	req := httptest.NewRequest(http.MethodPost, "/triggers/garage_bookings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("trigger status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
