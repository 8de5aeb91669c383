// Package notifier публикует события об изменениях реестра. Доставка
// best-effort: сбой публикации логируется и считается в метриках, но не
// откатывает уже выполненную мутацию.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Notifier принимает события после успешных мутаций.
type Notifier interface {
	Notify(ctx context.Context, event models.ChangeEvent)
}

// NewEvent собирает событие с новым идентификатором.
func NewEvent(entity models.EntityType, entityID int64, newState, actorID string, at time.Time) models.ChangeEvent {
	return models.ChangeEvent{
		ID:         uuid.NewString(),
		EntityType: entity,
		EntityID:   entityID,
		NewState:   newState,
		ActorID:    actorID,
		OccurredAt: at.UTC(),
	}
}

// RabbitMQ публикует события в точку обмена ledger.changes.
// Ключ маршрутизации — тип сущности.
type RabbitMQ struct {
	log *slog.Logger
	ch  rabbitmq.Publisher
}

// NewRabbitMQ создаёт публикатор поверх открытого канала.
func NewRabbitMQ(log *slog.Logger, ch rabbitmq.Publisher) *RabbitMQ {
	return &RabbitMQ{log: log, ch: ch}
}

// Notify публикует событие. Ошибка только логируется.
func (n *RabbitMQ) Notify(_ context.Context, event models.ChangeEvent) {
	const op = "notifier.RabbitMQ.Notify"
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	err := rabbitmq.PublishMessage(n.ch, rabbitmq.ChangesExchange, string(event.EntityType), event.ID, event)
	if err != nil {
		metrics.NotifierFailures.WithLabelValues(string(event.EntityType)).Inc()
		n.log.Warn("failed to publish change event",
			slog.String("op", op),
			slog.String("event_id", event.ID),
			slog.String("entity_type", string(event.EntityType)),
			slog.Int64("entity_id", event.EntityID),
			sl.Err(err),
		)
	}
}

// Log пишет события в лог. Используется, когда брокер не настроен.
type Log struct {
	log *slog.Logger
}

// NewLog создаёт Log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// Notify пишет событие в лог на уровне Debug.
func (n *Log) Notify(_ context.Context, event models.ChangeEvent) {
	n.log.Debug("change event",
		slog.String("event_id", event.ID),
		slog.String("entity_type", string(event.EntityType)),
		slog.Int64("entity_id", event.EntityID),
		slog.String("new_state", event.NewState),
		slog.String("actor_id", event.ActorID),
	)
}
