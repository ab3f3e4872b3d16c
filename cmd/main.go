package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/app"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{Env: os.Getenv("APP_ENV")})

	application := fx.New(
		fx.Logger(log),
		fx.StartTimeout(30*time.Second),
		app.Module,
	)

	// Missing TELEGRAM_TOKEN or a failed login surfaces here.
	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := application.Stop(stopCtx)
	cancel()
	if err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
