// Package repository реализует хранилище реестра взносов на PostgreSQL.
// Уникальность (участник, период) обеспечивается частичными уникальными
// индексами, а все мутации выполняются одним SQL-выражением
// (INSERT ... ON CONFLICT ... DO UPDATE ... WHERE, UPDATE ... WHERE status = ANY),
// поэтому между проверкой и записью нет окна для гонки.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

const defaultOpTimeout = 5 * time.Second

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB      *sql.DB
	timeout time.Duration
}

var _ storage.Store = (*Storage)(nil)

// New создаёт подключение к PostgreSQL. opTimeout ограничивает каждую операцию.
func New(storageConnectionString string, opTimeout time.Duration) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	return &Storage{
		DB:      db,
		timeout: opTimeout,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}
	return nil
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'obligations'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("required table obligations query error: %w", err)
	}
	if !exists {
		return errors.New("required table obligations missing")
	}
	return nil
}

func (s *Storage) opContext(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, ctx.Err())
	default:
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, cancel, nil
}

// wrapErr переводит ошибки драйвера в ошибки контракта storage.
// Переполнение NUMERIC становится ErrInvalidAmount. Прочие ошибки PostgreSQL,
// кроме нарушения уникальности, возвращаются как есть,
// всё остальное (сеть, таймаут, закрытый пул) — ErrUnavailable.
func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, storage.ErrDuplicateKey, pgErr.ConstraintName)
		case pgerrcode.NumericValueOutOfRange:
			return fmt.Errorf("%s: %w: %s", op, models.ErrInvalidAmount, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
}
