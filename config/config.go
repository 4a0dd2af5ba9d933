package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Notification store backends
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

// Trigger authentication modes
const (
	AuthNone = "none"
	AuthHMAC = "hmac"
	AuthOIDC = "oidc"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port string `validate:"required,numeric"`
	Env  string

	NotificationStore        string `validate:"oneof=firestore mongo"`
	NotificationsCollection  string `validate:"required"`
	GarageBookingsCollection string `validate:"required"`
	RentalBookingsCollection string `validate:"required"`

	FirebaseProjectID         string
	FirebaseCredentialsBase64 string
	GoogleCredentialsFile     string

	MongoURI string `validate:"required_if=NotificationStore mongo"`
	DBName   string `validate:"required"`

	TriggerAuth     string `validate:"oneof=none hmac oidc"`
	TriggerSecret   string `validate:"required_if=TriggerAuth hmac"`
	TriggerAudience string `validate:"required_if=TriggerAuth oidc"`
	GoogleCertsURL  string `validate:"required_if=TriggerAuth oidc"`

	RateLimitRPS   float64       `validate:"gt=0"`
	RateLimitBurst int           `validate:"min=1"`
	WriteTimeout   time.Duration `validate:"min=0"`
}

// LoadConfig reads the configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		Env:                       getEnv("ENV", "production"),
		NotificationStore:         getEnv("NOTIFICATION_STORE", StoreFirestore),
		NotificationsCollection:   getEnv("NOTIFICATIONS_COLLECTION", "notifications"),
		GarageBookingsCollection:  getEnv("GARAGE_BOOKINGS_COLLECTION", "garage_bookings"),
		RentalBookingsCollection:  getEnv("RENTAL_BOOKINGS_COLLECTION", "rental_bookings"),
		FirebaseProjectID:         os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		GoogleCredentialsFile:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		MongoURI:                  os.Getenv("MONGO_URI"),
		DBName:                    getEnv("DB_NAME", "booking_notifier"),
		TriggerAuth:               getEnv("TRIGGER_AUTH", AuthNone),
		TriggerSecret:             os.Getenv("TRIGGER_SECRET"),
		TriggerAudience:           os.Getenv("TRIGGER_AUDIENCE"),
		GoogleCertsURL:            getEnv("GOOGLE_CERTS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
	}

	// Check both MONGO_URI and MONGODB_URI
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}
	if cfg.MongoURI == "" && (cfg.Env == "development" || cfg.Env == "dev") {
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "50"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "100")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.WriteTimeout, err = time.ParseDuration(getEnv("WRITE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
