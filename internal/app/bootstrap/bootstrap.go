// Package bootstrap собирает общую инфраструктуру сервисов реестра:
// хранилище, справочник участников, кэш и подключение к брокеру.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/dues-ledger/internal/cache"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/directory"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/migrations"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
	"github.com/magabrotheeeer/dues-ledger/internal/storage/memory"
	"github.com/magabrotheeeer/dues-ledger/internal/storage/repository"
)

// Storage — открытое хранилище и источник справочника участников.
type Storage struct {
	Store   storage.Store
	Members directory.Source
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// OpenStorage открывает хранилище по cfg.Storage. С migrate=true накатывает
// миграции, иначе ждёт, пока их накатит сервис API.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*Storage, error) {
	const op = "bootstrap.OpenStorage"

	if cfg.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		return &Storage{Store: memory.New(), Members: directory.NewStatic()}, nil
	}

	db, err := repository.New(cfg.StorageConnectionString, cfg.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if migrate {
		err = migrations.Run(db.DB)
	} else {
		err = waitForDB(ctx, db)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{Store: db, Members: db}, nil
}

// OpenCache подключается к Redis. В окружении local недоступный Redis
// не считается ошибкой: возвращается nil.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.Cache, error) {
	c, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err == nil {
		return c, nil
	}
	if cfg.Env == "local" {
		logger.Warn("redis unavailable, display names are not cached", sl.Err(err))
		return nil, nil
	}
	return nil, err
}

// NewDirectory создаёт справочник участников поверх src. c может быть nil.
func NewDirectory(logger *slog.Logger, src directory.Source, c *cache.Cache, ttl time.Duration) *directory.Directory {
	var names directory.NameCache
	if c != nil {
		names = c
	}
	return directory.New(logger, src, names, ttl)
}

// OpenBroker подключается к RabbitMQ и объявляет топологию реестра.
func OpenBroker(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, *amqp.Channel, error) {
	const op = "bootstrap.OpenBroker"

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.Delay)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.LedgerTopology())
	if err != nil {
		CloseBroker(nil, conn, logger)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return conn, ch, nil
}

// CloseBroker закрывает канал и соединение. Любой аргумент может быть nil.
func CloseBroker(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}
