package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"worklens/adapters/llm"
	"worklens/adapters/platform"
	"worklens/adapters/postgres"
	"worklens/adapters/postgres/migrations"
	"worklens/app"
	"worklens/domain/core"
	"worklens/models"
	"worklens/ui"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[API] No .env file loaded: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("[API] DATABASE_URL is required")
	}

	db, err := postgres.Connect(databaseURL)
	if err != nil {
		log.Fatalf("[API] Database connection failed: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		log.Fatalf("[API] Migrations failed: %v", err)
	}

	trackerCfg := models.DefaultTrackerConfig()
	llmCfg := models.DefaultLLMConfig()
	clock := core.SystemClock{}

	activities := postgres.NewActivityRepository(db)
	screenshots := postgres.NewScreenshotRepository(db)
	clients := postgres.NewClientRepository(db)
	users := postgres.NewUserRepository(db)

	gateway := &llm.OpenAIClient{
		APIKey:      llmCfg.APIKey,
		BaseURL:     llmCfg.BaseURL,
		Model:       llmCfg.Model,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		Timeout:     llmCfg.Timeout,
	}
	classifier := llm.NewClassifier(gateway, clients, llmCfg.Timeout)

	windows := platform.NewWindowProvider(nil)
	capturer := platform.NewScreenCapturer(trackerCfg.ScreenshotDir)
	ocr := platform.NewTextExtractor()
	input := platform.NewInputRecorder()
	uploadStore := &platform.UploadStore{Dir: filepath.Join(trackerCfg.ScreenshotDir, "uploads")}

	sessions := app.NewSessionManager(trackerCfg, clock, windows, capturer, ocr, input,
		classifier, activities, screenshots)
	uploads := app.NewUploadService(trackerCfg, clock, uploadStore, ocr, classifier,
		activities, screenshots)
	manual := app.NewManualEntryService(trackerCfg, clock, classifier, activities)
	reports := app.NewReportService(clock, activities)

	server := ui.NewServer(clock, users, clients, activities, screenshots,
		sessions, uploads, manual, reports)

	addr := ":8000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start(addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		if err := sessions.Stop(); err != nil && !errors.Is(err, core.ErrSessionNotRunning) {
			log.Printf("[API] Session shutdown: %v", err)
		}
		return ctx.Err()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[API] Server exited: %v", err)
	}
}
