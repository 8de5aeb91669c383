package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int64) (*models.DiscretionaryEntry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*models.DiscretionaryEntry)
	return e, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Get", mock.Anything, int64(8)).
		Return(&models.DiscretionaryEntry{ID: 8, Polarity: models.PolarityIncome, Category: "donation"}, nil)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), mockService)

	req := httptest.NewRequest(http.MethodGet, "/ledger/8", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "8")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"donation"`)
	mockService.AssertExpectations(t)
}
