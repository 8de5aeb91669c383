// Package sl содержит вспомогательные атрибуты для логгера slog.
package sl

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Err возвращает атрибут "error". Для nil возвращает пустую строку.
//
//	log.Error("failed to confirm obligation", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Period возвращает атрибут "period" в виде MM-YYYY.
func Period(p models.Period) slog.Attr {
	return slog.String("period", p.String())
}

// Amount возвращает денежный атрибут как строку без потери точности.
func Amount(key string, v decimal.Decimal) slog.Attr {
	return slog.String(key, v.StringFixed(2))
}
