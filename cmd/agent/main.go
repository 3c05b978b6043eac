package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"worklens/adapters/platform"
	"worklens/domain/core"
	"worklens/internal/agent"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Agent] No .env file loaded: %v", err)
	}

	cfg := agent.DefaultConfig()
	if cfg.Token == "" {
		log.Fatal("[Agent] AGENT_API_TOKEN is required")
	}

	captureDir := os.Getenv("AGENT_SCREENSHOT_DIR")
	if captureDir == "" {
		captureDir = os.TempDir()
	}

	a := agent.New(cfg, core.SystemClock{},
		platform.NewWindowProvider(nil),
		platform.NewScreenCapturer(captureDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := agent.ServeStatus(cfg.StatusAddr, a); err != nil {
			log.Printf("[Agent] Status server exited: %v", err)
		}
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.Run(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[Agent] Exited: %v", err)
	}
}
