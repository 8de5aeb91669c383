package collected

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

func (m *MockService) YearCollected(ctx context.Context, year int) (*aggregation.Collected, error) {
	args := m.Called(ctx, year)
	c, _ := args.Get(0).(*aggregation.Collected)
	return c, args.Error(1)
}

func (m *MockService) TotalCollected(ctx context.Context) (*aggregation.Collected, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*aggregation.Collected)
	return c, args.Error(1)
}

func TestCollectedHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "year",
			query: "?year=2025",
			setupMock: func(m *MockService) {
				m.On("YearCollected", mock.Anything, 2025).Return(&aggregation.Collected{
					Year: 2025, Monthly: decimal.NewFromInt(40), Entrance: decimal.NewFromInt(50), Total: decimal.NewFromInt(90),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total":"90"`,
		},
		{
			name:  "all time",
			query: "",
			setupMock: func(m *MockService) {
				m.On("TotalCollected", mock.Anything).Return(&aggregation.Collected{Total: decimal.NewFromInt(500)}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total":"500"`,
		},
		{
			name:  "year out of range",
			query: "?year=1990",
			setupMock: func(m *MockService) {
				m.On("YearCollected", mock.Anything, 1990).
					Return(nil, fmt.Errorf("aggregation.YearCollected: %w", models.ErrInvalidPeriod))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "bad year",
			query:          "?year=last",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/reports/collected"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
