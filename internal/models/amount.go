package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale — число знаков после запятой в столбцах NUMERIC(12, 2).
const AmountScale = 2

// amountLimit — первое значение, которое не помещается в NUMERIC(12, 2).
var amountLimit = decimal.New(1, 12-AmountScale)

// ValidateAmount проверяет, что сумма неотрицательна, не длиннее копеек
// и помещается в хранилище. Положительность проверяет вызывающий.
func ValidateAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, v)
	}
	if !v.Equal(v.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, v, AmountScale)
	}
	if v.GreaterThanOrEqual(amountLimit) {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, v, amountLimit.Sub(decimal.New(1, -AmountScale)))
	}
	return nil
}
