// Package reminder по расписанию рассылает напоминания участникам
// с задолженностью по взносам текущего года.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

const lockKey = "dues-ledger:reminder"

// ArrearsSource отдаёт должников за год. Реализуется aggregation.Engine.
type ArrearsSource interface {
	Arrears(ctx context.Context, year int) ([]aggregation.Debtor, error)
}

// Locker берёт распределённую блокировку. Реализуется *redislock.Client.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// Service — планировщик напоминаний.
type Service struct {
	log     *slog.Logger
	arrears ArrearsSource
	locker  Locker
	ch      rabbitmq.Publisher
	lockTTL time.Duration
	now     func() time.Time
}

// New создаёт планировщик. lockTTL должен быть не меньше интервала рассылки,
// иначе соседний экземпляр повторит её в том же интервале.
func New(log *slog.Logger, arrears ArrearsSource, locker Locker, ch rabbitmq.Publisher, lockTTL time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{log: log, arrears: arrears, locker: locker, ch: ch, lockTTL: lockTTL, now: now}
}

// Run рассылает напоминания сразу и затем каждые interval до отмены ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	const op = "reminder.Run"
	s.tick(ctx, op)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped", slog.String("op", op))
			return
		case <-ticker.C:
			s.tick(ctx, op)
		}
	}
}

func (s *Service) tick(ctx context.Context, op string) {
	sent, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("reminder run failed", slog.String("op", op), sl.Err(err))
		return
	}
	s.log.Info("reminder run finished", slog.String("op", op), slog.Int("sent", sent))
}

// RunOnce выполняет одну рассылку, если удалось взять блокировку.
// Блокировка не снимается и истекает через lockTTL.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "reminder.RunOnce"
	now := s.now()
	log := s.log.With(slog.String("op", op), slog.Int("year", now.Year()))

	_, err := s.locker.Obtain(ctx, lockKey, s.lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Info("reminder run is held by another instance")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	debtors, err := s.arrears.Arrears(ctx, now.Year())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(debtors) == 0 {
		log.Info("no members with outstanding dues")
		return 0, nil
	}

	sent := 0
	for _, d := range debtors {
		msg := models.Reminder{
			MemberID:    d.MemberID,
			DisplayName: d.DisplayName,
			Year:        now.Year(),
			Outstanding: d.Outstanding.StringFixed(2),
			DueMonths:   d.UnpaidMonths,
		}
		messageID := fmt.Sprintf("reminder:%s:%s", d.MemberID, now.Format("2006-01-02"))
		err := rabbitmq.PublishMessage(s.ch, rabbitmq.RemindersExchange, rabbitmq.ReminderRoutingKey, messageID, msg)
		if err != nil {
			log.Error("failed to publish reminder", slog.String("member_id", d.MemberID), sl.Err(err))
			continue
		}
		metrics.RemindersPublished.Inc()
		sent++
	}
	return sent, nil
}
