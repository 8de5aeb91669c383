// Package month считает, какие месяцы года уже наступили на заданную дату.
package month

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Due возвращает число наступивших месяцев года на момент now:
// 12 для прошедших лет, номер текущего месяца для текущего года, 0 для будущих.
func Due(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 12
	case year > now.Year():
		return 0
	default:
		return int(now.Month())
	}
}

// Periods возвращает все двенадцать периодов года по порядку.
func Periods(year int) []models.Period {
	out := make([]models.Period, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, models.Period{Month: m, Year: year})
	}
	return out
}

// IsDue сообщает, наступил ли период на момент now.
func IsDue(p models.Period, now time.Time) bool {
	return p.Month <= Due(p.Year, now)
}

// Lines раскладывает записи участника за год на двенадцать месяцев.
// Месяц без записи считается unpaid с суммой defaultAmount. pending и failed
// относятся к задолженности, пока месяц наступил.
func Lines(year int, obligations []models.Obligation, now time.Time, defaultAmount decimal.Decimal) []models.MonthLine {
	byMonth := make(map[int]models.Obligation, len(obligations))
	for _, ob := range obligations {
		if ob.Kind == models.KindMonthly && ob.Period.Year == year {
			byMonth[ob.Period.Month] = ob
		}
	}

	lines := make([]models.MonthLine, 0, 12)
	for _, p := range Periods(year) {
		line := models.MonthLine{Period: p, Status: models.StatusUnpaid, Amount: defaultAmount}
		if ob, ok := byMonth[p.Month]; ok {
			ob := ob
			line.Obligation = &ob
			line.Status = ob.Status
			line.Amount = ob.Amount
		}
		switch {
		case line.Status.IsSettled():
			line.Bucket = models.BucketPaid
		case IsDue(p, now):
			line.Bucket = models.BucketOutstanding
		default:
			line.Bucket = models.BucketNotYetDue
		}
		lines = append(lines, line)
	}
	return lines
}
