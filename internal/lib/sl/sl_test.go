package sl_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestPeriodAndAmount(t *testing.T) {
	assert.Equal(t, "03-2025", sl.Period(models.Period{Month: 3, Year: 2025}).Value.String())
	assert.Equal(t, "5.00", sl.Amount("amount", decimal.NewFromInt(5)).Value.String())
}

func TestNew_HandlerByEnv(t *testing.T) {
	var text, json bytes.Buffer

	sl.New("local", &text).Debug("claim submitted")
	sl.New("prod", &json).Debug("dropped")
	sl.New("prod", &json).Info("claim submitted")

	assert.Contains(t, text.String(), "msg=\"claim submitted\"")
	assert.NotContains(t, json.String(), "dropped")
	assert.Contains(t, json.String(), `"msg":"claim submitted"`)
}
