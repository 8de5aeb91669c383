// Package events читает события об изменениях реестра из брокера.
// Доставка не гарантирует единственность, поэтому повторы отсекаются
// по ID события.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Deduper помечает уже обработанные события. Реализуется cache.Cache.
type Deduper interface {
	SetIfAbsent(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// Tail логирует события об изменениях.
type Tail struct {
	log    *slog.Logger
	dedupe Deduper
	ttl    time.Duration
}

// NewTail создаёт Tail. dedupe может быть nil, тогда повторы не отсекаются.
func NewTail(log *slog.Logger, dedupe Deduper, ttl time.Duration) *Tail {
	return &Tail{log: log, dedupe: dedupe, ttl: ttl}
}

// Handle разбирает одно сообщение. Ошибка разбора не возвращается,
// чтобы битое сообщение не крутилось в очереди.
func (t *Tail) Handle(ctx context.Context, body []byte) error {
	const op = "events.Handle"
	log := t.log.With(slog.String("op", op))

	var event models.ChangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("dropping malformed change event", slog.String("body", string(body)))
		return nil
	}
	if event.ID == "" {
		log.Error("dropping change event without id")
		return nil
	}

	if t.dedupe != nil {
		first, err := t.dedupe.SetIfAbsent(ctx, "ledger-events:seen:"+event.ID, t.ttl)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !first {
			log.Debug("duplicate change event skipped", slog.String("event_id", event.ID))
			return nil
		}
	}

	log.Info("change event",
		slog.String("event_id", event.ID),
		slog.String("entity_type", string(event.EntityType)),
		slog.Int64("entity_id", event.EntityID),
		slog.String("new_state", event.NewState),
		slog.String("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
