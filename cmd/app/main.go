package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/yt-summarizer/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New()

	app, err := initializeApp()
	if err != nil {
		log.Error("summarizer service failed to start", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("summarizer service stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
