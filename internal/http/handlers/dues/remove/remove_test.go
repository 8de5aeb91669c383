package remove

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, id int64, actor models.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	treasurer := models.Actor{ID: "t-1", Role: "treasurer", Capabilities: models.CapabilitiesForRole("treasurer")}

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "removed",
			id:   "5",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, int64(5), treasurer).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted_id":5`,
		},
		{
			name: "not found",
			id:   "6",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, int64(6), treasurer).
					Return(fmt.Errorf("reconciliation.Remove: %w", storage.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
		{
			name:           "bad id",
			id:             "-",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/dues/obligations/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithActor(ctx, treasurer))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
