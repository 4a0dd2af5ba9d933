package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/booking_notifier/controllers"
)

// SetupRoutes configures the status endpoints and the trigger endpoints
func SetupRoutes(e *echo.Echo, store string, triggers []*controllers.TriggerController, triggerMiddlewares ...echo.MiddlewareFunc) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Booking notifier is running",
			"version": "1.0",
		})
	})

	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
			"store":  store,
		})
	})

	RegisterTriggerRoutes(e, triggers, triggerMiddlewares...)
}
