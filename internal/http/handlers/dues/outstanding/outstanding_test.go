package outstanding

import (
	"context"
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
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) MemberOutstanding(ctx context.Context, memberID string, year int) (*aggregation.Outstanding, error) {
	args := m.Called(ctx, memberID, year)
	out, _ := args.Get(0).(*aggregation.Outstanding)
	return out, args.Error(1)
}

func TestOutstandingHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	treasurer := models.Actor{ID: "t-1", Capabilities: models.CapabilitiesForRole("treasurer")}

	mockService := new(MockService)
	mockService.On("MemberOutstanding", mock.Anything, "m-1", 2025).Return(&aggregation.Outstanding{
		MemberID:     "m-1",
		Year:         2025,
		Outstanding:  decimal.NewFromInt(15),
		NotYetDue:    decimal.NewFromInt(45),
		DueMonths:    3,
		FutureMonths: 9,
		UnpaidMonths: 3,
	}, nil)
	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodGet, "/members/m-1/outstanding/2025", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("memberID", "m-1")
	rctx.URLParams.Add("year", "2025")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(middlewarectx.WithActor(ctx, treasurer))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outstanding":"15"`)
	assert.Contains(t, w.Body.String(), `"not_yet_due":"45"`)
	mockService.AssertExpectations(t)
}

func TestOutstandingHandler_Forbidden(t *testing.T) {
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/members/m-1/outstanding/2025", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("memberID", "m-1")
	rctx.URLParams.Add("year", "2025")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(middlewarectx.WithActor(ctx, models.Actor{ID: "m-9"}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
