// Package reconciliation реализует автомат состояний оплаты взносов:
// заявка участника, подтверждение и отклонение казначеем, ручной ввод.
//
// Авторизация выполняется снаружи (HTTP-слой проверяет возможности
// действующего лица), сервис получает уже проверенного models.Actor.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/month"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/retry"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/notifier"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

// claimable — статусы, поверх которых участник может подать заявку.
// Заявку на проверке (pending) участник не меняет.
var claimable = []models.Status{models.StatusUnpaid, models.StatusFailed}

// rejectedClaim переводит отказ guard-а в ошибку домена по текущей записи:
// pending даёт ErrInvalidTransition, paid даёт ErrInvalidPeriod.
func rejectedClaim(current *models.Obligation, what string) error {
	if current != nil && current.Status == models.StatusPending {
		return fmt.Errorf("%w: %s is under review", models.ErrInvalidTransition, what)
	}
	return fmt.Errorf("%w: %s already paid", models.ErrInvalidPeriod, what)
}

// Options задаёт суммы по умолчанию, часы и политику повторов.
type Options struct {
	MonthlyAmount  decimal.Decimal
	EntranceAmount decimal.Decimal
	Now            func() time.Time
	Retry          retry.Policy
}

// Service — сервис сверки платежей.
type Service struct {
	log      *slog.Logger
	store    storage.ObligationStore
	notifier notifier.Notifier
	opts     Options
}

// New создаёт сервис. Нулевые поля Options заменяются значениями по умолчанию.
func New(log *slog.Logger, store storage.ObligationStore, n notifier.Notifier, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MonthlyAmount.IsZero() {
		opts.MonthlyAmount = decimal.NewFromInt(5)
	}
	if opts.EntranceAmount.IsZero() {
		opts.EntranceAmount = decimal.NewFromInt(50)
	}
	if opts.Retry.MaxRetries == 0 && opts.Retry.Initial == 0 {
		opts.Retry = retry.Default
	}
	return &Service{log: log, store: store, notifier: n, opts: opts}
}

// ClaimRequest — данные заявки или ручного ввода.
// Нулевая Amount означает сумму по умолчанию.
type ClaimRequest struct {
	MemberID  string
	Period    models.Period
	Amount    decimal.Decimal
	Reference string
}

func (s *Service) amount(v, def decimal.Decimal) (decimal.Decimal, error) {
	if v.IsZero() {
		return def, nil
	}
	if err := models.ValidateAmount(v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}

func validateMember(memberID string) error {
	if strings.TrimSpace(memberID) == "" {
		return fmt.Errorf("%w: member id is required", models.ErrInvalidMember)
	}
	return nil
}

// SubmitClaim переводит месячный взнос в pending по заявке участника.
// Уже оплаченный период отклоняется с ErrInvalidPeriod, заявка на проверке
// с ErrInvalidTransition.
func (s *Service) SubmitClaim(ctx context.Context, actor models.Actor, req ClaimRequest) (*models.Obligation, error) {
	const op = "reconciliation.SubmitClaim"
	log := s.log.With(slog.String("op", op), slog.String("member_id", req.MemberID), sl.Period(req.Period))

	if err := validateMember(req.MemberID); err != nil {
		return nil, s.fail("claim", op, err)
	}
	if err := req.Period.Validate(); err != nil {
		return nil, s.fail("claim", op, err)
	}
	amount, err := s.amount(req.Amount, s.opts.MonthlyAmount)
	if err != nil {
		return nil, s.fail("claim", op, err)
	}

	ob, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (*models.Obligation, error) {
		return s.store.UpsertMonthly(ctx, models.UpsertParams{
			MemberID:  req.MemberID,
			Period:    req.Period,
			Amount:    amount,
			Reference: strings.TrimSpace(req.Reference),
			Status:    models.StatusPending,
			ActorID:   actor.ID,
			Guard:     claimable,
		})
	})
	if errors.Is(err, storage.ErrGuardRejected) {
		return nil, s.fail("claim", op, rejectedClaim(ob, req.Period.String()))
	}
	if err != nil {
		return nil, s.fail("claim", op, err)
	}

	log.Info("claim submitted", slog.Int64("obligation_id", ob.ID), slog.String("actor_id", actor.ID))
	s.succeed(ctx, "claim", ob, actor.ID)
	return ob, nil
}

// SubmitEntranceClaim — заявка на вступительный взнос. Правила те же.
func (s *Service) SubmitEntranceClaim(ctx context.Context, actor models.Actor, req ClaimRequest) (*models.Obligation, error) {
	const op = "reconciliation.SubmitEntranceClaim"

	if err := validateMember(req.MemberID); err != nil {
		return nil, s.fail("entrance_claim", op, err)
	}
	amount, err := s.amount(req.Amount, s.opts.EntranceAmount)
	if err != nil {
		return nil, s.fail("entrance_claim", op, err)
	}

	ob, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (*models.Obligation, error) {
		return s.store.UpsertEntrance(ctx, models.UpsertParams{
			MemberID:  req.MemberID,
			Amount:    amount,
			Reference: strings.TrimSpace(req.Reference),
			Status:    models.StatusPending,
			ActorID:   actor.ID,
			Guard:     claimable,
		})
	})
	if errors.Is(err, storage.ErrGuardRejected) {
		return nil, s.fail("entrance_claim", op, rejectedClaim(ob, "entrance fee"))
	}
	if err != nil {
		return nil, s.fail("entrance_claim", op, err)
	}

	s.log.Info("entrance claim submitted",
		slog.String("op", op), slog.String("member_id", req.MemberID), slog.Int64("obligation_id", ob.ID))
	s.succeed(ctx, "entrance_claim", ob, actor.ID)
	return ob, nil
}

// Confirm подтверждает оплату из любого неоплаченного состояния.
// Повторное подтверждение возвращает текущую запись без ошибки.
func (s *Service) Confirm(ctx context.Context, obligationID int64, actor models.Actor) (*models.Obligation, error) {
	const op = "reconciliation.Confirm"

	now := s.opts.Now().UTC()
	type result struct {
		ob      *models.Obligation
		changed bool
	}
	res, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (result, error) {
		ob, changed, err := s.store.SetStatus(ctx, obligationID, models.StatusChange{
			To:      models.StatusPaid,
			From:    []models.Status{models.StatusUnpaid, models.StatusPending, models.StatusFailed},
			PaidAt:  &now,
			ActorID: actor.ID,
		})
		return result{ob: ob, changed: changed}, err
	})
	if errors.Is(err, storage.ErrTransitionRejected) {
		return nil, s.fail("confirm", op, fmt.Errorf("%w: %w", models.ErrInvalidTransition, err))
	}
	if err != nil {
		return nil, s.fail("confirm", op, err)
	}

	if !res.changed {
		metrics.ReconciliationOutcomes.WithLabelValues("confirm", "noop").Inc()
		s.log.Info("obligation already paid", slog.String("op", op), slog.Int64("obligation_id", obligationID))
		return res.ob, nil
	}
	s.log.Info("obligation confirmed",
		slog.String("op", op), slog.Int64("obligation_id", obligationID), slog.String("actor_id", actor.ID))
	s.succeed(ctx, "confirm", res.ob, actor.ID)
	return res.ob, nil
}

// Reject отклоняет заявку. Допустим только из pending.
func (s *Service) Reject(ctx context.Context, obligationID int64, actor models.Actor) (*models.Obligation, error) {
	const op = "reconciliation.Reject"

	type result struct {
		ob      *models.Obligation
		changed bool
	}
	res, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (result, error) {
		ob, changed, err := s.store.SetStatus(ctx, obligationID, models.StatusChange{
			To:      models.StatusFailed,
			From:    []models.Status{models.StatusPending},
			ActorID: actor.ID,
		})
		return result{ob: ob, changed: changed}, err
	})
	if errors.Is(err, storage.ErrTransitionRejected) {
		return nil, s.fail("reject", op, fmt.Errorf("%w: %w", models.ErrInvalidTransition, err))
	}
	if err != nil {
		return nil, s.fail("reject", op, err)
	}
	// failed -> failed тоже запрещён: отклонить можно только pending
	if !res.changed {
		return nil, s.fail("reject", op,
			fmt.Errorf("%w: obligation %d is already %s", models.ErrInvalidTransition, obligationID, res.ob.Status))
	}

	s.log.Info("obligation rejected",
		slog.String("op", op), slog.Int64("obligation_id", obligationID), slog.String("actor_id", actor.ID))
	s.succeed(ctx, "reject", res.ob, actor.ID)
	return res.ob, nil
}

// ManualBackfill вносит оплату вручную. Повторный вызов обновляет ту же запись.
// Для pending это неявное подтверждение: ссылка участника сохраняется,
// если казначей не указал свою.
func (s *Service) ManualBackfill(ctx context.Context, actor models.Actor, req ClaimRequest) (*models.Obligation, error) {
	const op = "reconciliation.ManualBackfill"

	if err := validateMember(req.MemberID); err != nil {
		return nil, s.fail("backfill", op, err)
	}
	if err := req.Period.Validate(); err != nil {
		return nil, s.fail("backfill", op, err)
	}
	amount, err := s.amount(req.Amount, s.opts.MonthlyAmount)
	if err != nil {
		return nil, s.fail("backfill", op, err)
	}

	now := s.opts.Now().UTC()
	ob, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (*models.Obligation, error) {
		return s.store.UpsertMonthly(ctx, models.UpsertParams{
			MemberID:      req.MemberID,
			Period:        req.Period,
			Amount:        amount,
			Reference:     strings.TrimSpace(req.Reference),
			Status:        models.StatusPaid,
			PaidAt:        &now,
			ActorID:       actor.ID,
			KeepReference: true,
		})
	})
	if err != nil {
		return nil, s.fail("backfill", op, err)
	}

	s.log.Info("manual payment recorded",
		slog.String("op", op),
		slog.String("member_id", req.MemberID),
		sl.Period(req.Period),
		sl.Amount("amount", amount),
		slog.String("actor_id", actor.ID),
	)
	s.succeed(ctx, "backfill", ob, actor.ID)
	return ob, nil
}

// ManualEntranceBackfill вносит вступительный взнос вручную.
func (s *Service) ManualEntranceBackfill(ctx context.Context, actor models.Actor, req ClaimRequest) (*models.Obligation, error) {
	const op = "reconciliation.ManualEntranceBackfill"

	if err := validateMember(req.MemberID); err != nil {
		return nil, s.fail("entrance_backfill", op, err)
	}
	amount, err := s.amount(req.Amount, s.opts.EntranceAmount)
	if err != nil {
		return nil, s.fail("entrance_backfill", op, err)
	}

	now := s.opts.Now().UTC()
	ob, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (*models.Obligation, error) {
		return s.store.UpsertEntrance(ctx, models.UpsertParams{
			MemberID:      req.MemberID,
			Amount:        amount,
			Reference:     strings.TrimSpace(req.Reference),
			Status:        models.StatusPaid,
			PaidAt:        &now,
			ActorID:       actor.ID,
			KeepReference: true,
		})
	})
	if err != nil {
		return nil, s.fail("entrance_backfill", op, err)
	}

	s.log.Info("manual entrance payment recorded",
		slog.String("op", op), slog.String("member_id", req.MemberID), slog.String("actor_id", actor.ID))
	s.succeed(ctx, "entrance_backfill", ob, actor.ID)
	return ob, nil
}

// Remove удаляет ошибочно внесённое обязательство.
func (s *Service) Remove(ctx context.Context, obligationID int64, actor models.Actor) error {
	const op = "reconciliation.Remove"

	err := retry.Run(ctx, s.opts.Retry, func(ctx context.Context) error {
		return s.store.DeleteObligation(ctx, obligationID)
	})
	if err != nil {
		return s.fail("remove", op, err)
	}

	s.log.Info("obligation removed",
		slog.String("op", op), slog.Int64("obligation_id", obligationID), slog.String("actor_id", actor.ID))
	metrics.ReconciliationOutcomes.WithLabelValues("remove", "ok").Inc()
	s.notifier.Notify(ctx, notifier.NewEvent(models.EntityObligation, obligationID, "deleted", actor.ID, s.opts.Now()))
	return nil
}

// Get возвращает обязательство по ID.
func (s *Service) Get(ctx context.Context, obligationID int64) (*models.Obligation, error) {
	const op = "reconciliation.Get"
	ob, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) (*models.Obligation, error) {
		return s.store.GetObligation(ctx, obligationID)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ob, nil
}

// List возвращает обязательства по фильтру, например очередь заявок на проверку.
func (s *Service) List(ctx context.Context, filter models.ObligationFilter) ([]models.Obligation, error) {
	const op = "reconciliation.List"
	obs, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) ([]models.Obligation, error) {
		return s.store.ListObligations(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return obs, nil
}

// MemberYear возвращает двенадцатимесячную ведомость участника.
func (s *Service) MemberYear(ctx context.Context, memberID string, year int) ([]models.MonthLine, error) {
	const op = "reconciliation.MemberYear"

	if err := (models.Period{Month: 1, Year: year}).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	obs, err := retry.Do(ctx, s.opts.Retry, func(ctx context.Context) ([]models.Obligation, error) {
		return s.store.GetYear(ctx, memberID, year)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return month.Lines(year, obs, s.opts.Now(), s.opts.MonthlyAmount), nil
}

func (s *Service) succeed(ctx context.Context, operation string, ob *models.Obligation, actorID string) {
	metrics.ReconciliationOutcomes.WithLabelValues(operation, "ok").Inc()
	s.notifier.Notify(ctx,
		notifier.NewEvent(models.EntityObligation, ob.ID, string(ob.Status), actorID, s.opts.Now()))
}

func (s *Service) fail(operation, op string, err error) error {
	outcome := "error"
	switch {
	case errors.Is(err, models.ErrInvalidPeriod), errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidMember):
		outcome = "invalid"
	case errors.Is(err, models.ErrInvalidTransition):
		outcome = "rejected"
	case errors.Is(err, models.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, storage.ErrDuplicateKey):
		s.log.Error("uniqueness invariant violated", slog.String("op", op), sl.Err(err))
	}
	metrics.ReconciliationOutcomes.WithLabelValues(operation, outcome).Inc()
	return fmt.Errorf("%s: %w", op, err)
}
