package year

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) MemberYear(ctx context.Context, memberID string, year int) ([]models.MonthLine, error) {
	args := m.Called(ctx, memberID, year)
	lines, _ := args.Get(0).([]models.MonthLine)
	return lines, args.Error(1)
}

func TestYearHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lines := []models.MonthLine{{
		Period: models.Period{Month: 1, Year: 2025},
		Status: models.StatusUnpaid,
		Amount: decimal.NewFromInt(5),
		Bucket: models.BucketOutstanding,
	}}

	tests := []struct {
		name           string
		actor          models.Actor
		member         string
		year           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "own year",
			actor:  models.Actor{ID: "m-1"},
			member: "m-1",
			year:   "2025",
			setupMock: func(m *MockService) {
				m.On("MemberYear", mock.Anything, "m-1", 2025).Return(lines, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"bucket":"outstanding"`,
		},
		{
			name:           "foreign year",
			actor:          models.Actor{ID: "m-2"},
			member:         "m-1",
			year:           "2025",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "year out of range",
			actor:  models.Actor{ID: "m-1"},
			member: "m-1",
			year:   "1999",
			setupMock: func(m *MockService) {
				m.On("MemberYear", mock.Anything, "m-1", 1999).
					Return(nil, fmt.Errorf("reconciliation.MemberYear: %w", models.ErrInvalidPeriod))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"invalid period"`,
		},
		{
			name:           "bad year",
			actor:          models.Actor{ID: "m-1"},
			member:         "m-1",
			year:           "twenty",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/members/"+tt.member+"/dues/"+tt.year, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("memberID", tt.member)
			rctx.URLParams.Add("year", tt.year)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithActor(ctx, tt.actor))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
