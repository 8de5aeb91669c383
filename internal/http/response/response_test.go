package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "something went wrong"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("op: %w", models.ErrInvalidPeriod), http.StatusUnprocessableEntity},
		{models.ErrInvalidCategory, http.StatusUnprocessableEntity},
		{models.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{models.ErrInvalidEntry, http.StatusUnprocessableEntity},
		{models.ErrInvalidMember, http.StatusUnprocessableEntity},
		{fmt.Errorf("op: %w", models.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("op: %w", storage.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("op: %w", storage.ErrUnavailable), http.StatusServiceUnavailable},
		{models.ErrAuthorizationDenied, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRenderError_HidesInternals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	RenderError(w, req, fmt.Errorf("storage.GetObligation: pq: secret detail: %w", storage.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	RenderError(w, req, errors.New("connection string leaked"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"internal error"}`, w.Body.String())
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Month  int    `validate:"min=1,max=12"`
		Amount string `validate:"numeric"`
		Kind   string `validate:"oneof=income expense"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{Month: 13, Amount: "five", Kind: "gift"})
	assert.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Month is out of range")
	assert.Contains(t, resp.Error, "field Amount can contain only numbers")
	assert.Contains(t, resp.Error, "field Kind must be one of [income expense]")
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{})
	assert.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Contains(t, resp.Error, "field Name is a required field")
}
