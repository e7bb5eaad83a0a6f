package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"screenrent/backend/internal/config"
	"screenrent/backend/internal/domain/account"
	"screenrent/backend/internal/domain/analytics"
	"screenrent/backend/internal/domain/booking"
	"screenrent/backend/internal/domain/content"
	"screenrent/backend/internal/domain/like"
	"screenrent/backend/internal/domain/review"
	"screenrent/backend/internal/domain/screen"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/firebase"
	apihttp "screenrent/backend/internal/http"
	"screenrent/backend/internal/payments"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init firebase app: %v", err)
	}

	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		log.Fatalf("failed to init firebase auth: %v", err)
	}

	fs, err := firebase.NewFirestore(ctx, app)
	if err != nil {
		log.Fatalf("failed to init firestore: %v", err)
	}
	defer fs.Close()

	gateway := payments.NewStripeGateway(cfg.StripeSecretKey)

	userRepo := user.NewRepo(fs.Client)
	screenRepo := screen.NewRepo(fs.Client)
	bookingRepo := booking.NewRepo(fs.Client)

	screenSvc := screen.NewService(screenRepo)
	bookingSvc := booking.NewService(bookingRepo, screenRepo, userRepo, gateway)
	analyticsSvc := analytics.NewService(fs.Client)
	bookingSvc.SetCaptureRecorder(analyticsSvc)

	accountSvc := account.NewService(userRepo, gateway, cfg)
	reviewSvc := review.NewService(fs.Client, screenRepo)
	likeSvc := like.NewService(fs.Client)
	contentSvc := content.NewService(fs.Client)
	uploader := content.NewUploader(cfg)

	var webhook *account.Webhook
	if cfg.StripeWebhookSecret != "" {
		eventLog := account.NewEventLog(fs.Client)
		webhook = account.NewWebhook(cfg.StripeWebhookSecret, userRepo, bookingRepo, eventLog)
	} else {
		log.Printf("STRIPE_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:          cfg,
		AuthClient:   authClient,
		UserRepo:     userRepo,
		ScreenSvc:    screenSvc,
		BookingSvc:   bookingSvc,
		AccountSvc:   accountSvc,
		Webhook:      webhook,
		ReviewSvc:    reviewSvc,
		LikeSvc:      likeSvc,
		ContentSvc:   contentSvc,
		Uploader:     uploader,
		AnalyticsSvc: analyticsSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
