package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/booking_notifier/config"
	"github.com/HSouheill/booking_notifier/controllers"
	"github.com/HSouheill/booking_notifier/middleware"
	"github.com/HSouheill/booking_notifier/repositories"
	"github.com/HSouheill/booking_notifier/routes"
	"github.com/HSouheill/booking_notifier/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// The notification store is created once and shared by both triggers
	var store services.NotificationStore
	var closeStore func()
	switch cfg.NotificationStore {
	case config.StoreMongo:
		client, err := config.ConnectDB(cfg)
		if err != nil {
			log.Fatal(err)
		}
		store = repositories.NewMongoNotificationRepository(client, cfg.DBName, cfg.NotificationsCollection)
		closeStore = func() { client.Disconnect(context.Background()) }
	default:
		app, err := config.InitFirebase(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		client, err := config.ConnectFirestore(ctx, app)
		if err != nil {
			log.Fatal(err)
		}
		store = repositories.NewFirestoreNotificationRepository(client, cfg.NotificationsCollection)
		closeStore = func() { client.Close() }
	}
	defer closeStore()

	categories := []*services.BookingCategory{
		services.GarageBookings.WithCollection(cfg.GarageBookingsCollection),
		services.RentalBookings.WithCollection(cfg.RentalBookingsCollection),
	}
	var triggers []*controllers.TriggerController
	for _, category := range categories {
		notifier := services.NewStatusNotifier(category, store, cfg.WriteTimeout)
		triggers = append(triggers, controllers.NewTriggerController(notifier))
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())

	stopCleanup := make(chan struct{})
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	rateLimiter.StartCleanup(5*time.Minute, stopCleanup)

	auth := middleware.NewTriggerAuthenticator(middleware.TriggerAuthConfig{
		Mode:     cfg.TriggerAuth,
		Secret:   cfg.TriggerSecret,
		Audience: cfg.TriggerAudience,
		CertsURL: cfg.GoogleCertsURL,
	})

	routes.SetupRoutes(e, cfg.NotificationStore, triggers, rateLimiter.RateLimit(), auth.Middleware())

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	close(stopCleanup)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
