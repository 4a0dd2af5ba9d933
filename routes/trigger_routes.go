package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/booking_notifier/controllers"
)

// RegisterTriggerRoutes registers one event endpoint per watched booking collection
func RegisterTriggerRoutes(e *echo.Echo, triggers []*controllers.TriggerController, middlewares ...echo.MiddlewareFunc) {
	triggerGroup := e.Group("/triggers", middlewares...)

	for _, tc := range triggers {
		triggerGroup.POST("/"+tc.Collection(), tc.HandleDocumentEvent)
	}
}
