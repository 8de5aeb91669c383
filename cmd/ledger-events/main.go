package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/dues-ledger/internal/app/events"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)
	logger.Info("starting ledger-events", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := events.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize events app", sl.Err(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("events app stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("ledger-events stopped gracefully")
}
