package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	fbstorage "firebase.google.com/go/v4/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"thumblytic-backend-go/internal/config"
)

var (
	// fsClient is the global Firestore client instance.
	fsClient *firestore.Client
	// fbAuthClient is the global Firebase Auth client instance.
	fbAuthClient *auth.Client
	// fbStorageClient is set only when FIREBASE_STORAGE_BUCKET is configured.
	fbStorageClient *fbstorage.Client
)

// InitFirebase initializes the Firebase Admin SDK and sets up the Firestore,
// Auth and (optionally) Storage clients.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirebase: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			// ADC may still succeed, so this is only a warning.
			logger.Warn("GOOGLE_APPLICATION_CREDENTIALS file does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with Base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials (ADC)")
	}

	fbConfig := &firebase.Config{
		ProjectID:     appConfig.FirebaseProjectID,
		StorageBucket: appConfig.FirebaseStorageBucket,
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}
	fsClient = client

	authCl, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}
	fbAuthClient = authCl

	if appConfig.FirebaseStorageBucket != "" {
		storageCl, err := app.Storage(ctx)
		if err != nil {
			fsClient.Close()
			return fmt.Errorf("app.Storage: %w", err)
		}
		fbStorageClient = storageCl
		logger.Info("Firebase Storage client initialized", zap.String("bucket", appConfig.FirebaseStorageBucket))
	}

	logger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the global Firestore client, or nil before InitFirebase.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client, or nil before InitFirebase.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// GetFirebaseStorageClient returns the global Storage client. It is nil when no bucket is configured.
func GetFirebaseStorageClient() *fbstorage.Client {
	return fbStorageClient
}

// CloseFirebase releases the Firestore client.
func CloseFirebase() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}
