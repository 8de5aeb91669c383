package backfill

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/reconciliation"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ManualBackfill(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error) {
	args := m.Called(ctx, actor, req)
	ob, _ := args.Get(0).(*models.Obligation)
	return ob, args.Error(1)
}

func (m *MockService) ManualEntranceBackfill(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error) {
	args := m.Called(ctx, actor, req)
	ob, _ := args.Get(0).(*models.Obligation)
	return ob, args.Error(1)
}

func TestBackfillHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	treasurer := models.Actor{ID: "admin-a", Capabilities: models.CapabilitiesForRole("treasurer")}

	tests := []struct {
		name           string
		entrance       bool
		body           Request
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "monthly backfill",
			body: Request{MemberID: "m-1", Month: 2, Year: 2025, Reference: "cash"},
			setupMock: func(m *MockService) {
				m.On("ManualBackfill", mock.Anything, treasurer, mock.MatchedBy(func(r reconciliation.ClaimRequest) bool {
					return r.MemberID == "m-1" && r.Period == models.Period{Month: 2, Year: 2025} && r.Reference == "cash"
				})).Return(&models.Obligation{ID: 3, Status: models.StatusPaid}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"paid"`,
		},
		{
			name:     "entrance backfill",
			entrance: true,
			body:     Request{MemberID: "m-1", Amount: "50"},
			setupMock: func(m *MockService) {
				m.On("ManualEntranceBackfill", mock.Anything, treasurer, mock.Anything).
					Return(&models.Obligation{ID: 4, Kind: models.KindEntrance, Status: models.StatusPaid}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"kind":"entrance"`,
		},
		{
			name:           "member id required",
			body:           Request{Month: 2, Year: 2025},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field MemberID is a required field",
		},
		{
			name: "invalid period from service",
			body: Request{MemberID: "m-1"},
			setupMock: func(m *MockService) {
				m.On("ManualBackfill", mock.Anything, treasurer, mock.Anything).Return(nil, models.ErrInvalidPeriod)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)
			if tt.entrance {
				handler = NewEntrance(logger, mockService)
			}

			body, err := json.Marshal(tt.body)
			assert.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/dues/backfill", bytes.NewReader(body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), treasurer))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
