package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

var march2025 = models.Period{Month: 3, Year: 2025}

func TestStorage_UpsertMonthly(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	paidAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	later := paidAt.Add(48 * time.Hour)

	tests := []struct {
		name       string
		memberID   string
		steps      []models.UpsertParams
		wantStatus models.Status
		wantRef    string
		wantPaidAt *time.Time
		wantErr    error
	}{
		{
			name:     "insert pending claim",
			memberID: "m-insert",
			steps: []models.UpsertParams{
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPending, Reference: "TRX-1"},
			},
			wantStatus: models.StatusPending,
			wantRef:    "TRX-1",
		},
		{
			name:     "guard rejects overwrite of paid",
			memberID: "m-guard",
			steps: []models.UpsertParams{
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPaid, PaidAt: &paidAt, ActorID: "admin"},
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPending, Reference: "late",
					Guard: []models.Status{models.StatusUnpaid, models.StatusPending, models.StatusFailed}},
			},
			wantStatus: models.StatusPaid,
			wantPaidAt: &paidAt,
			wantErr:    storage.ErrGuardRejected,
		},
		{
			name:     "re-entry of paid keeps first paid_at",
			memberID: "m-reentry",
			steps: []models.UpsertParams{
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPaid, PaidAt: &paidAt, Reference: "A"},
				{Period: march2025, Amount: decimal.NewFromInt(6), Status: models.StatusPaid, PaidAt: &later, Reference: "B"},
			},
			wantStatus: models.StatusPaid,
			wantRef:    "B",
			wantPaidAt: &paidAt,
		},
		{
			name:     "keep reference when new one is empty",
			memberID: "m-keepref",
			steps: []models.UpsertParams{
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPending, Reference: "TRX-9"},
				{Period: march2025, Amount: decimal.NewFromInt(5), Status: models.StatusPaid, PaidAt: &paidAt, KeepReference: true},
			},
			wantStatus: models.StatusPaid,
			wantRef:    "TRX-9",
			wantPaidAt: &paidAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got *models.Obligation
				err error
			)
			for _, p := range tt.steps {
				p.MemberID = tt.memberID
				got, err = s.UpsertMonthly(ctx, p)
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.Status)
			if tt.wantRef != "" {
				require.NotNil(t, got.Reference)
				assert.Equal(t, tt.wantRef, *got.Reference)
			}
			if tt.wantPaidAt != nil {
				require.NotNil(t, got.PaidAt)
				assert.True(t, tt.wantPaidAt.Equal(*got.PaidAt))
			}

			year, err := s.GetYear(ctx, tt.memberID, 2025)
			require.NoError(t, err)
			assert.Len(t, year, 1)
		})
	}
}

func TestStorage_UpsertMonthly_Concurrent(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpsertMonthly(ctx, models.UpsertParams{
				MemberID: "m-race",
				Period:   march2025,
				Amount:   decimal.NewFromInt(5),
				Status:   models.StatusPending,
				Guard:    []models.Status{models.StatusUnpaid, models.StatusPending, models.StatusFailed},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := s.ListObligations(ctx, models.ObligationFilter{MemberID: "m-race"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStorage_UpsertEntrance(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	first, err := s.UpsertEntrance(ctx, models.UpsertParams{
		MemberID: "m-1", Amount: decimal.NewFromInt(50), Status: models.StatusPending, Reference: "ENT-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindEntrance, first.Kind)
	assert.Equal(t, models.Period{}, first.Period)

	second, err := s.UpsertEntrance(ctx, models.UpsertParams{
		MemberID: "m-1", Amount: decimal.NewFromInt(50), Status: models.StatusPending, Reference: "ENT-2",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetEntrance(ctx, "m-1")
	require.NoError(t, err)
	require.NotNil(t, got.Reference)
	assert.Equal(t, "ENT-2", *got.Reference)

	_, err = s.GetEntrance(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_SetStatus(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		rawStatus   string
		change      models.StatusChange
		wantStatus  models.Status
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "confirm legacy submitted claim",
			rawStatus:   "Submitted",
			change:      models.StatusChange{To: models.StatusPaid, PaidAt: &now, ActorID: "admin"},
			wantStatus:  models.StatusPaid,
			wantChanged: true,
		},
		{
			name:       "confirm legacy approved row is a no-op",
			rawStatus:  "approved",
			change:     models.StatusChange{To: models.StatusPaid, PaidAt: &now, ActorID: "admin"},
			wantStatus: models.StatusPaid,
		},
		{
			name:      "reject requires pending",
			rawStatus: "belum_bayar",
			change: models.StatusChange{To: models.StatusFailed, ActorID: "admin",
				From: []models.Status{models.StatusPending}},
			wantStatus: models.StatusUnpaid,
			wantErr:    storage.ErrTransitionRejected,
		},
		{
			name:      "reject pending",
			rawStatus: "menunggu",
			change: models.StatusChange{To: models.StatusFailed, ActorID: "admin",
				From: []models.Status{models.StatusPending}},
			wantStatus:  models.StatusFailed,
			wantChanged: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := factory.SeedMonthly(t, "m-status", i+1, 2025, 5, tt.rawStatus)

			got, changed, err := s.SetStatus(ctx, id, tt.change)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantChanged, changed)
			if !changed {
				assert.Equal(t, tt.rawStatus, factory.RawStatus(t, id), "row must not be rewritten")
			}
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := s.SetStatus(ctx, 999999, models.StatusChange{To: models.StatusPaid})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStorage_ListObligations_LegacyStatuses(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	factory.SeedMonthly(t, "m-1", 1, 2025, 5, "pending")
	factory.SeedMonthly(t, "m-1", 2, 2025, 5, "in_review")
	factory.SeedMonthly(t, "m-2", 1, 2025, 5, "paid")

	pending, err := s.ListObligations(ctx, models.ObligationFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, ob := range pending {
		assert.Equal(t, models.StatusPending, ob.Status)
	}

	page, err := s.ListObligations(ctx, models.ObligationFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestStorage_SumPaid(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	factory.SeedMonthly(t, "m-1", 1, 2025, 5, "paid")
	factory.SeedMonthly(t, "m-1", 2, 2025, 5, "LUNAS")
	factory.SeedMonthly(t, "m-1", 3, 2025, 5, "pending")
	factory.SeedMonthly(t, "m-1", 12, 2024, 5, "settled")
	factory.SeedEntrance(t, "m-1", 50, "paid", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		kind models.Kind
		year int
		want string
	}{
		{name: "monthly 2025", kind: models.KindMonthly, year: 2025, want: "10"},
		{name: "monthly all years", kind: models.KindMonthly, year: 0, want: "15"},
		{name: "entrance by created_at year", kind: models.KindEntrance, year: 2024, want: "50"},
		{name: "entrance other year", kind: models.KindEntrance, year: 2025, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SumPaid(ctx, tt.kind, tt.year)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestStorage_Entries(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	created, err := s.CreateEntry(ctx, models.DiscretionaryEntry{
		Polarity: models.PolarityExpense, Title: "Roof repair", Category: "maintenance",
		Amount: decimal.NewFromInt(40), Date: day, CreatedBy: "treasurer",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = s.CreateEntry(ctx, models.DiscretionaryEntry{
		Polarity: models.PolarityIncome, Title: "Gift", Category: "donation",
		Amount: decimal.NewFromInt(100), Date: day.AddDate(0, 0, 1), CreatedBy: "treasurer",
	})
	require.NoError(t, err)

	created.Amount = decimal.NewFromInt(45)
	updated, err := s.UpdateEntry(ctx, *created)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(45).Equal(updated.Amount))

	expense, err := s.SumEntries(ctx, models.PolarityExpense)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(45).Equal(expense))

	totals, err := s.TotalsByCategory(ctx, models.PolarityIncome)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "donation", totals[0].Category)
	assert.Equal(t, 1, totals[0].Count)

	from := day.AddDate(0, 0, 1)
	list, err := s.ListEntries(ctx, models.EntryFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Gift", list[0].Title)

	require.NoError(t, s.DeleteEntry(ctx, created.ID))
	_, err = s.GetEntry(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, s.DeleteEntry(ctx, created.ID), storage.ErrNotFound)
}

func TestStorage_Members(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	factory.CreateMember(t, "m-1", "Ayu", "active")
	factory.CreateMember(t, "m-2", "Budi", "inactive")

	exists, err := s.MemberExists(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, exists)

	name, err := s.MemberDisplayName(ctx, "m-2")
	require.NoError(t, err)
	assert.Equal(t, "Budi", name)

	_, err = s.MemberDisplayName(ctx, "m-3")
	require.ErrorIs(t, err, storage.ErrNotFound)

	active, err := s.ListActiveMembers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "m-1", active[0].ID)
}

func TestStorage_Unavailable(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, CheckDatabaseReady(context.Background(), s))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.GetYear(ctx, "m-1", 2025)
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	require.NoError(t, s.Close())
	_, err = s.GetYear(context.Background(), "m-1", 2025)
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}
