// Package storage описывает контракт хранилища реестра взносов и общие ошибки
// для его реализаций: PostgreSQL (repository) и in-memory (memory).
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

var (
	// ErrNotFound — записи с таким идентификатором нет.
	ErrNotFound = fmt.Errorf("storage: %w", models.ErrNotFound)
	// ErrUnavailable — драйвер вернул ошибку соединения или истёк таймаут.
	ErrUnavailable = fmt.Errorf("storage: %w", models.ErrStorageUnavailable)
	// ErrDuplicateKey — нарушено ограничение уникальности. Через атомарный upsert
	// недостижимо и означает нарушение внутреннего инварианта.
	ErrDuplicateKey = errors.New("storage: duplicate key")
	// ErrGuardRejected — upsert не выполнен, текущий статус не входит в Guard.
	ErrGuardRejected = errors.New("storage: upsert guard rejected")
	// ErrTransitionRejected — SetStatus не выполнен, текущий статус не входит в From.
	ErrTransitionRejected = errors.New("storage: status transition rejected")
)

// ObligationStore хранит ежемесячные и вступительные взносы.
// Каждая мутация атомарна относительно ключа (участник, период).
type ObligationStore interface {
	// GetYear возвращает от 0 до 12 ежемесячных записей участника за год.
	GetYear(ctx context.Context, memberID string, year int) ([]models.Obligation, error)
	// GetObligation возвращает обязательство по ID.
	GetObligation(ctx context.Context, id int64) (*models.Obligation, error)
	// GetEntrance возвращает вступительный взнос участника.
	GetEntrance(ctx context.Context, memberID string) (*models.Obligation, error)
	// ListObligations возвращает обязательства по фильтру.
	ListObligations(ctx context.Context, filter models.ObligationFilter) ([]models.Obligation, error)
	// UpsertMonthly вставляет или обновляет запись по (участник, месяц, год).
	// При отказе Guard возвращает текущую запись и ErrGuardRejected.
	UpsertMonthly(ctx context.Context, p models.UpsertParams) (*models.Obligation, error)
	// UpsertEntrance — то же, ключ только участник.
	UpsertEntrance(ctx context.Context, p models.UpsertParams) (*models.Obligation, error)
	// SetStatus переводит обязательство в новый статус. Если статус уже целевой,
	// возвращает запись без изменений и changed=false.
	SetStatus(ctx context.Context, id int64, change models.StatusChange) (ob *models.Obligation, changed bool, err error)
	// DeleteObligation физически удаляет ошибочную запись.
	DeleteObligation(ctx context.Context, id int64) error
}

// LedgerStore хранит записи свободного учёта доходов и расходов.
type LedgerStore interface {
	CreateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error)
	UpdateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	GetEntry(ctx context.Context, id int64) (*models.DiscretionaryEntry, error)
	ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.DiscretionaryEntry, error)
}

// AggregateReader отдаёт суммы для расчёта сводных показателей.
type AggregateReader interface {
	// SumPaid суммирует оплаченные обязательства вида kind. year=0 — за все годы.
	// Для вступительных взносов год берётся из даты оплаты.
	SumPaid(ctx context.Context, kind models.Kind, year int) (decimal.Decimal, error)
	// ListMonthlyByYear возвращает ежемесячные записи всех участников за год.
	ListMonthlyByYear(ctx context.Context, year int) ([]models.Obligation, error)
	// SumEntries суммирует записи свободного учёта одного направления.
	SumEntries(ctx context.Context, polarity models.Polarity) (decimal.Decimal, error)
	// TotalsByCategory группирует записи одного направления по категории.
	TotalsByCategory(ctx context.Context, polarity models.Polarity) ([]models.CategoryTotal, error)
}

// Store объединяет все части хранилища.
type Store interface {
	ObligationStore
	LedgerStore
	AggregateReader
	Ping(ctx context.Context) error
	Close() error
}
