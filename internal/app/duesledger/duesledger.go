package duesledger

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/dues-ledger/internal/app/bootstrap"
	"github.com/magabrotheeeer/dues-ledger/internal/cache"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	grpcserver "github.com/magabrotheeeer/dues-ledger/internal/grpc/server"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/health"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/jwt"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/retry"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/notifier"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
	"github.com/magabrotheeeer/dues-ledger/internal/services/ledger"
	"github.com/magabrotheeeer/dues-ledger/internal/services/reconciliation"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

const healthProbeInterval = 15 * time.Second

// App — процесс HTTP API с gRPC health-сервером.
type App struct {
	server  *http.Server
	health  *grpcserver.HealthServer
	grpcLis net.Listener
	logger  *slog.Logger
	store   storage.Store
	cache   *cache.Cache
	conn    *amqp.Connection
	ch      *amqp.Channel
}

// New собирает зависимости и маршруты. Хранилище мигрируется при старте.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := bootstrap.OpenStorage(ctx, cfg, logger, true)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger, store: st.Store}

	a.cache, err = bootstrap.OpenCache(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	var n notifier.Notifier
	a.conn, a.ch, err = bootstrap.OpenBroker(cfg, logger)
	switch {
	case err == nil:
		n = notifier.NewRabbitMQ(logger, a.ch)
	case cfg.Env == "local":
		logger.Warn("rabbitmq unavailable, change events are only logged", sl.Err(err))
		n = notifier.NewLog(logger)
	default:
		a.close()
		return nil, err
	}

	dir := bootstrap.NewDirectory(logger, st.Members, a.cache, cfg.NameCacheTTL)
	svc := Services{
		Reconciliation: reconciliation.New(logger, st.Store, n, reconciliation.Options{
			MonthlyAmount:  cfg.Dues.Monthly(),
			EntranceAmount: cfg.Dues.Entrance(),
			Retry:          retry.Default,
		}),
		Ledger: ledger.New(logger, st.Store, n, nil, retry.Default),
		Aggregation: aggregation.New(logger, st.Store, dir, aggregation.Options{
			MonthlyAmount: cfg.Dues.Monthly(),
			Retry:         retry.Default,
		}),
	}

	checks := map[string]health.Check{"storage": st.Store.Ping}
	grpcChecks := map[string]grpcserver.Check{"storage": st.Store.Ping}
	if a.cache != nil {
		checks["redis"] = a.cache.Ping
		grpcChecks["redis"] = a.cache.Ping
	}

	a.grpcLis, err = net.Listen("tcp", cfg.AddressGRPC)
	if err != nil {
		a.close()
		return nil, err
	}
	a.health = grpcserver.NewHealthServer(logger, grpcChecks)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateBurst),
		checks)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run обслуживает HTTP и gRPC до отмены ctx, затем корректно останавливается.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		errCh <- a.health.Serve(a.grpcLis)
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go a.health.Watch(watchCtx, healthProbeInterval)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.health.GracefulStop()
	a.close()
	return runErr
}

func (a *App) close() {
	bootstrap.CloseBroker(a.ch, a.conn, a.logger)
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.grpcLis != nil && a.health == nil {
		_ = a.grpcLis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
