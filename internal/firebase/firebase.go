package firebase

import (
	"context"
	"os"

	"screenrent/backend/internal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	// Prefer GOOGLE_APPLICATION_CREDENTIALS (service account json file path)
	// Or FIREBASE_SERVICE_ACCOUNT_JSON (raw json content)
	opts := []option.ClientOption{}

	if json := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); json != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(json)))
	}

	appCfg := &firebase.Config{}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	if cfg.StorageBucket != "" {
		appCfg.StorageBucket = cfg.StorageBucket
	}

	if len(opts) > 0 {
		return firebase.NewApp(ctx, appCfg, opts...)
	}
	return firebase.NewApp(ctx, appCfg)
}

func NewAuthClient(ctx context.Context, app *firebase.App) (*auth.Client, error) {
	return app.Auth(ctx)
}
