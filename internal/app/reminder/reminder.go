// Package reminder собирает процесс рассылки напоминаний о задолженности.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bsm/redislock"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/dues-ledger/internal/app/bootstrap"
	"github.com/magabrotheeeer/dues-ledger/internal/cache"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/retry"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
	reminderservice "github.com/magabrotheeeer/dues-ledger/internal/services/reminder"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

// App представляет приложение планировщика напоминаний.
type App struct {
	reminderService *reminderservice.Service
	cfg             *config.Config
	store           storage.Store
	cache           *cache.Cache
	conn            *amqp.Connection
	ch              *amqp.Channel
	logger          *slog.Logger
}

// New создает новый экземпляр приложения планировщика. Redis обязателен:
// без блокировки несколько экземпляров разошлют напоминания повторно.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := bootstrap.OpenStorage(ctx, cfg, logger, false)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, store: st.Store, logger: logger}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	a.conn, a.ch, err = bootstrap.OpenBroker(cfg, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	dir := bootstrap.NewDirectory(logger, st.Members, a.cache, cfg.NameCacheTTL)
	engine := aggregation.New(logger, st.Store, dir, aggregation.Options{
		MonthlyAmount: cfg.Dues.Monthly(),
		Retry:         retry.Default,
	})
	a.reminderService = reminderservice.New(logger, engine, redislock.New(a.cache.Db), a.ch, cfg.ReminderLockTTL, nil)
	return a, nil
}

// Run запускает планировщик и блокирует до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.reminderService.Run(ctx, a.cfg.ReminderInterval)

	a.logger.Info("shutting down reminder service")
	a.close()
	return nil
}

func (a *App) close() {
	bootstrap.CloseBroker(a.ch, a.conn, a.logger)
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
