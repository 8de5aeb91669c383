package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/dues-ledger/internal/cache"
	"github.com/magabrotheeeer/dues-ledger/internal/config"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) MemberExists(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSource) MemberDisplayName(ctx context.Context, memberID string) (string, error) {
	args := m.Called(ctx, memberID)
	return args.String(0), args.Error(1)
}

func (m *MockSource) ListActiveMembers(ctx context.Context) ([]models.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	return c, mr
}

func TestMemberDisplayName_CachesLookup(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	src := new(MockSource)
	src.On("MemberDisplayName", mock.Anything, "m-1").Return("Ayu", nil).Once()

	d := New(discardLogger(), src, c, time.Minute)

	assert.Equal(t, "Ayu", d.MemberDisplayName(ctx, "m-1"))
	assert.Equal(t, "Ayu", d.MemberDisplayName(ctx, "m-1"))
	src.AssertExpectations(t)
}

func TestMemberDisplayName_Placeholder(t *testing.T) {
	tests := []struct {
		name string
		ret  string
		err  error
	}{
		{name: "lookup error", err: errors.New("connection refused")},
		{name: "unknown member", err: models.ErrNotFound},
		{name: "empty name", ret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockSource)
			src.On("MemberDisplayName", mock.Anything, "m-9").Return(tt.ret, tt.err)

			d := New(discardLogger(), src, nil, time.Minute)
			assert.Equal(t, "member m-9", d.MemberDisplayName(context.Background(), "m-9"))
		})
	}
}

func TestMemberDisplayName_CacheDownFallsBackToSource(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	src := new(MockSource)
	src.On("MemberDisplayName", mock.Anything, "m-1").Return("Ayu", nil)

	d := New(discardLogger(), src, c, time.Minute)
	assert.Equal(t, "Ayu", d.MemberDisplayName(context.Background(), "m-1"))
}

func TestMemberExists_PropagatesError(t *testing.T) {
	src := new(MockSource)
	src.On("MemberExists", mock.Anything, "m-1").Return(false, errors.New("boom"))

	d := New(discardLogger(), src, nil, time.Minute)
	_, err := d.MemberExists(context.Background(), "m-1")
	require.Error(t, err)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(
		models.Member{ID: "m-2", DisplayName: "Budi", Status: "active"},
		models.Member{ID: "m-1", DisplayName: "Ayu", Status: "active"},
		models.Member{ID: "m-3", DisplayName: "Citra", Status: "inactive"},
	)

	ok, err := s.MemberExists(ctx, "m-3")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.MemberDisplayName(ctx, "m-4")
	require.ErrorIs(t, err, models.ErrNotFound)

	active, err := s.ListActiveMembers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "m-1", active[0].ID)

	d := New(discardLogger(), s, nil, 0)
	assert.Equal(t, "member m-4", d.MemberDisplayName(ctx, "m-4"))
}
