// Package events собирает процесс, читающий события об изменениях реестра.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/dues-ledger/internal/app/bootstrap"
	"github.com/magabrotheeeer/dues-ledger/internal/cache"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	eventsservice "github.com/magabrotheeeer/dues-ledger/internal/services/events"
)

const seenTTL = 24 * time.Hour

// App читает очередь ledger.changes.tail.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	cache   *cache.Cache
	tail    *eventsservice.Tail
	workers int
	logger  *slog.Logger
}

// New подключается к брокеру и Redis.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, ch, err := bootstrap.OpenBroker(cfg, logger)
	if err != nil {
		return nil, err
	}
	c, err := bootstrap.OpenCache(ctx, cfg, logger)
	if err != nil {
		bootstrap.CloseBroker(ch, conn, logger)
		return nil, err
	}

	var dedupe eventsservice.Deduper
	if c != nil {
		dedupe = c
	}
	return &App{
		conn:    conn,
		ch:      ch,
		cache:   c,
		tail:    eventsservice.NewTail(logger, dedupe, seenTTL),
		workers: cfg.Workers,
		logger:  logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumeMessages(ctx, a.logger, a.ch, rabbitmq.ChangesTailQueue, a.workers, a.tail.Handle); err != nil {
		bootstrap.CloseBroker(a.ch, a.conn, a.logger)
		return err
	}
	a.logger.Info("consuming change events", slog.String("queue", rabbitmq.ChangesTailQueue))

	<-ctx.Done()

	a.logger.Info("shutting down change event consumer")
	bootstrap.CloseBroker(a.ch, a.conn, a.logger)
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	return nil
}
