package record

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/ledger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RecordIncome(ctx context.Context, actor models.Actor, in ledger.EntryInput) (*models.DiscretionaryEntry, error) {
	args := m.Called(ctx, actor, in)
	e, _ := args.Get(0).(*models.DiscretionaryEntry)
	return e, args.Error(1)
}

func (m *MockService) RecordExpense(ctx context.Context, actor models.Actor, in ledger.EntryInput) (*models.DiscretionaryEntry, error) {
	args := m.Called(ctx, actor, in)
	e, _ := args.Get(0).(*models.DiscretionaryEntry)
	return e, args.Error(1)
}

func TestRecordHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	treasurer := models.Actor{ID: "t-1", Role: "treasurer", Capabilities: models.CapabilitiesForRole("treasurer")}
	roof := ledger.EntryInput{
		Title:    "Roof repair",
		Category: "maintenance",
		Amount:   decimal.RequireFromString("120.50"),
		Date:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		income         bool
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "expense",
			body: `{"title":"Roof repair","category":"maintenance","amount":"120.50","date":"2025-03-14"}`,
			setupMock: func(m *MockService) {
				m.On("RecordExpense", mock.Anything, treasurer, roof).Return(&models.DiscretionaryEntry{
					ID: 1, Polarity: models.PolarityExpense, Title: "Roof repair", Category: "maintenance",
					Amount: roof.Amount, Date: roof.Date,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"polarity":"expense"`,
		},
		{
			name:   "income without date",
			income: true,
			body:   `{"title":"Gala","category":"Sponsorship","amount":"300"}`,
			setupMock: func(m *MockService) {
				m.On("RecordIncome", mock.Anything, treasurer, mock.MatchedBy(func(in ledger.EntryInput) bool {
					return in.Date.IsZero() && in.Category == "Sponsorship" && in.Amount.Equal(decimal.NewFromInt(300))
				})).Return(&models.DiscretionaryEntry{ID: 2, Polarity: models.PolarityIncome, Category: "sponsorship"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"category":"sponsorship"`,
		},
		{
			name: "unknown category",
			body: `{"title":"Party","category":"fun","amount":"10"}`,
			setupMock: func(m *MockService) {
				m.On("RecordExpense", mock.Anything, treasurer, mock.Anything).
					Return(nil, fmt.Errorf("ledger.RecordExpense: %w", models.ErrInvalidCategory))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"invalid expense category"`,
		},
		{
			name: "non positive amount",
			body: `{"title":"Party","category":"other","amount":"-1"}`,
			setupMock: func(m *MockService) {
				m.On("RecordExpense", mock.Anything, treasurer, mock.Anything).
					Return(nil, fmt.Errorf("ledger.RecordExpense: %w", models.ErrInvalidAmount))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"invalid amount"`,
		},
		{
			name:           "missing title",
			body:           `{"category":"other","amount":"1"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Title is a required field`,
		},
		{
			name:           "bad date",
			body:           `{"title":"x","category":"other","amount":"1","date":"14.03.2025"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid json",
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := NewExpense(logger, mockService)
			if tt.income {
				handler = NewIncome(logger, mockService)
			}

			req := httptest.NewRequest(http.MethodPost, "/ledger/expenses", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), treasurer))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
