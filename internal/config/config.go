package config

import (
	"os"
	"strings"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	StripeSecretKey              string
	StripeWebhookSecret          string
	SignedURLServiceAccountEmail string

	// Default redirect targets for Connect onboarding links when the
	// client does not supply its own.
	ConnectReturnURL  string
	ConnectRefreshURL string
}

func Load() Config {
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	appBase := getenv("APP_BASE_URL", "https://app.screenrent.io")

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		StripeSecretKey:              getenv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:          getenv("STRIPE_WEBHOOK_SECRET", ""),
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
		ConnectReturnURL:             getenv("STRIPE_CONNECT_RETURN_URL", appBase+"/connect/return"),
		ConnectRefreshURL:            getenv("STRIPE_CONNECT_REFRESH_URL", appBase+"/connect/refresh"),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
