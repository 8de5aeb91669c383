package balance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) OrganizationBalance(ctx context.Context) (*aggregation.Balance, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).(*aggregation.Balance)
	return b, args.Error(1)
}

func TestBalanceHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("ok", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("OrganizationBalance", mock.Anything).Return(&aggregation.Balance{
			MonthlyPaid: decimal.NewFromInt(100),
			Income:      decimal.NewFromInt(20),
			Expense:     decimal.NewFromInt(150),
			Balance:     decimal.NewFromInt(-30),
		}, nil)

		w := httptest.NewRecorder()
		New(logger, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/balance", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"balance":"-30"`)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("OrganizationBalance", mock.Anything).
			Return(nil, fmt.Errorf("aggregation.OrganizationBalance: %w", models.ErrStorageUnavailable))

		w := httptest.NewRecorder()
		New(logger, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/balance", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"storage unavailable"`)
	})
}
