package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/dues-ledger/internal/migrations"
)

// TestDataFactory создаёт тестовые данные в обход публичного API хранилища.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateMember добавляет участника в справочник.
func (f *TestDataFactory) CreateMember(t *testing.T, id, displayName, status string) {
	_, err := f.storage.DB.Exec(`INSERT INTO members (id, display_name, status) VALUES ($1, $2, $3)`,
		id, displayName, status)
	require.NoError(t, err)
}

// SeedMonthly кладёт ежемесячную запись с произвольным, в том числе историческим, статусом.
func (f *TestDataFactory) SeedMonthly(t *testing.T, memberID string, month, year int, amount float64, rawStatus string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO obligations (member_id, kind, month, year, amount, status)
		VALUES ($1, 'monthly', $2, $3, $4, $5) RETURNING id`,
		memberID, month, year, decimal.NewFromFloat(amount), rawStatus).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedEntrance кладёт вступительный взнос с заданной датой создания.
func (f *TestDataFactory) SeedEntrance(t *testing.T, memberID string, amount float64, rawStatus string, createdAt time.Time) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO obligations (member_id, kind, amount, status, created_at, updated_at)
		VALUES ($1, 'entrance', $2, $3, $4, $4) RETURNING id`,
		memberID, decimal.NewFromFloat(amount), rawStatus, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// RawStatus возвращает статус в том виде, в каком он лежит в таблице.
func (f *TestDataFactory) RawStatus(t *testing.T, id int64) string {
	var status string
	err := f.storage.DB.QueryRow(`SELECT status FROM obligations WHERE id = $1`, id).Scan(&status)
	require.NoError(t, err)
	return status
}

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr, 5*time.Second)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	require.NoError(t, migrations.Run(storage.DB))

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
