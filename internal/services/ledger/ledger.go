// Package ledger ведёт свободный учёт доходов и расходов организации,
// не привязанных к участникам.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/retry"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/notifier"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

// EntryInput — данные новой или изменённой записи.
// Category для расхода — категория из закрытого списка, для дохода — источник.
type EntryInput struct {
	Title       string
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Service — сервис свободного учёта.
type Service struct {
	log      *slog.Logger
	store    storage.LedgerStore
	notifier notifier.Notifier
	now      func() time.Time
	retry    retry.Policy
}

// New создаёт сервис. now может быть nil.
func New(log *slog.Logger, store storage.LedgerStore, n notifier.Notifier, now func() time.Time, p retry.Policy) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{log: log, store: store, notifier: n, now: now, retry: p}
}

// RecordIncome записывает поступление. Источник обязателен и приводится к нижнему регистру.
func (s *Service) RecordIncome(ctx context.Context, actor models.Actor, in EntryInput) (*models.DiscretionaryEntry, error) {
	return s.record(ctx, "ledger.RecordIncome", models.PolarityIncome, actor, in)
}

// RecordExpense записывает расход. Категория проверяется по закрытому списку.
func (s *Service) RecordExpense(ctx context.Context, actor models.Actor, in EntryInput) (*models.DiscretionaryEntry, error) {
	return s.record(ctx, "ledger.RecordExpense", models.PolarityExpense, actor, in)
}

func (s *Service) record(ctx context.Context, op string, polarity models.Polarity, actor models.Actor, in EntryInput) (*models.DiscretionaryEntry, error) {
	entry, err := s.validate(polarity, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entry.CreatedBy = actor.ID

	created, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*models.DiscretionaryEntry, error) {
		return s.store.CreateEntry(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ledger entry recorded",
		slog.String("op", op),
		slog.Int64("entry_id", created.ID),
		slog.String("polarity", string(polarity)),
		slog.String("category", created.Category),
		sl.Amount("amount", created.Amount),
		slog.String("actor_id", actor.ID),
	)
	s.changed(ctx, created, "created", actor.ID)
	return created, nil
}

// Update меняет запись. Направление записи не меняется.
func (s *Service) Update(ctx context.Context, id int64, actor models.Actor, in EntryInput) (*models.DiscretionaryEntry, error) {
	const op = "ledger.Update"

	current, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*models.DiscretionaryEntry, error) {
		return s.store.GetEntry(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry, err := s.validate(current.Polarity, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entry.ID = id

	updated, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*models.DiscretionaryEntry, error) {
		return s.store.UpdateEntry(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ledger entry updated",
		slog.String("op", op), slog.Int64("entry_id", id), slog.String("actor_id", actor.ID))
	s.changed(ctx, updated, "updated", actor.ID)
	return updated, nil
}

// Delete удаляет запись.
func (s *Service) Delete(ctx context.Context, id int64, actor models.Actor) error {
	const op = "ledger.Delete"

	current, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*models.DiscretionaryEntry, error) {
		return s.store.GetEntry(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := retry.Run(ctx, s.retry, func(ctx context.Context) error {
		return s.store.DeleteEntry(ctx, id)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ledger entry deleted",
		slog.String("op", op), slog.Int64("entry_id", id), slog.String("actor_id", actor.ID))
	s.changed(ctx, current, "deleted", actor.ID)
	return nil
}

// Get возвращает запись по ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.DiscretionaryEntry, error) {
	const op = "ledger.Get"
	e, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*models.DiscretionaryEntry, error) {
		return s.store.GetEntry(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// List возвращает записи по фильтру, новые первыми.
func (s *Service) List(ctx context.Context, filter models.EntryFilter) ([]models.DiscretionaryEntry, error) {
	const op = "ledger.List"
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%s: %w: empty date range", op, models.ErrInvalidEntry)
	}
	entries, err := retry.Do(ctx, s.retry, func(ctx context.Context) ([]models.DiscretionaryEntry, error) {
		return s.store.ListEntries(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (s *Service) validate(polarity models.Polarity, in EntryInput) (models.DiscretionaryEntry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.DiscretionaryEntry{}, fmt.Errorf("%w: title is required", models.ErrInvalidEntry)
	}
	if !in.Amount.IsPositive() {
		return models.DiscretionaryEntry{}, fmt.Errorf("%w: %s must be positive", models.ErrInvalidAmount, in.Amount)
	}
	if err := models.ValidateAmount(in.Amount); err != nil {
		return models.DiscretionaryEntry{}, err
	}

	var category string
	switch polarity {
	case models.PolarityExpense:
		c, err := models.ParseExpenseCategory(in.Category)
		if err != nil {
			return models.DiscretionaryEntry{}, err
		}
		category = string(c)
	case models.PolarityIncome:
		category = strings.ToLower(strings.TrimSpace(in.Category))
		if category == "" {
			return models.DiscretionaryEntry{}, fmt.Errorf("%w: income source is required", models.ErrInvalidEntry)
		}
	default:
		return models.DiscretionaryEntry{}, errors.New("unknown polarity " + string(polarity))
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	return models.DiscretionaryEntry{
		Polarity:    polarity,
		Title:       title,
		Category:    category,
		Amount:      in.Amount,
		Date:        date.UTC(),
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (s *Service) changed(ctx context.Context, e *models.DiscretionaryEntry, action, actorID string) {
	metrics.LedgerEntries.WithLabelValues(string(e.Polarity), action).Inc()
	s.notifier.Notify(ctx, notifier.NewEvent(models.EntityLedger, e.ID, action, actorID, s.now()))
}
