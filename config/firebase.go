package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. Credentials are taken from
// FIREBASE_CREDENTIALS_BASE64, then GOOGLE_APPLICATION_CREDENTIALS, and finally
// from the runtime's default service account.
func InitFirebase(ctx context.Context, cfg *Config) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		log.Printf("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	case cfg.GoogleCredentialsFile != "":
		if _, err := os.Stat(cfg.GoogleCredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file: %w", err)
		}
		log.Printf("Using Firebase credentials file: %s", cfg.GoogleCredentialsFile)
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	default:
		log.Printf("Using application default credentials for Firebase")
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

// ConnectFirestore opens the Firestore client of the Firebase app.
func ConnectFirestore(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error opening firestore client: %w", err)
	}
	log.Println("Connected to Firestore")
	return client, nil
}
