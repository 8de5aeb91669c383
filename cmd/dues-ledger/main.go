// Package main Dues Ledger API
//
// @title           Dues Ledger API
// @version         1.0
// @description     Реестр членских взносов и сверка оплат

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	duesledger "github.com/magabrotheeeer/dues-ledger/internal/app/duesledger"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/grpc/client"
	grpcserver "github.com/magabrotheeeer/dues-ledger/internal/grpc/server"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck(cfg, logger))
	}

	logger.Info("starting dues-ledger", slog.String("env", cfg.Env), slog.String("storage", cfg.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := duesledger.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("dues-ledger stopped gracefully")
}

// healthcheck опрашивает gRPC health-сервер запущенного экземпляра.
func healthcheck(cfg *config.Config, logger *slog.Logger) int {
	c, err := client.NewHealthClient(cfg.AddressGRPC)
	if err != nil {
		logger.Error("failed to create health client", sl.Err(err))
		return 1
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	serving, err := c.Serving(ctx, grpcserver.ServiceName)
	if err != nil {
		logger.Error("health check failed", sl.Err(err))
		return 1
	}
	if !serving {
		logger.Error("service is not serving")
		return 1
	}
	return 0
}
