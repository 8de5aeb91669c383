// Package paystatus приводит статусы оплаты, записанные разными версиями портала,
// к четырём каноническим значениям. Новые синонимы добавляются только здесь.
package paystatus

import (
	"sort"
	"strings"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

var spellings = map[models.Status][]string{
	models.StatusPaid: {
		"paid", "confirmed", "approved", "settled", "success", "succeeded",
		"verified", "completed", "lunas", "sudah_bayar", "dibayar",
	},
	models.StatusPending: {
		"pending", "submitted", "waiting", "in_review", "awaiting_confirmation",
		"processing", "menunggu", "menunggu_verifikasi",
	},
	models.StatusFailed: {
		"failed", "rejected", "declined", "refused", "canceled", "cancelled",
		"void", "ditolak", "gagal",
	},
	models.StatusUnpaid: {
		"unpaid", "due", "outstanding", "open", "new", "belum_bayar",
	},
}

var lookup = func() map[string]models.Status {
	m := make(map[string]models.Status)
	for status, raws := range spellings {
		for _, raw := range raws {
			m[raw] = status
		}
	}
	return m
}()

// Normalize возвращает канонический статус для любой строки.
// Нераспознанные значения считаются unpaid, чтобы не блокировать агрегаты.
func Normalize(raw string) models.Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if s, ok := lookup[key]; ok {
		return s
	}
	return models.StatusUnpaid
}

// Spellings возвращает все известные написания канонического статуса.
// Используется в SQL-условиях, чтобы учитывать строки старых версий.
func Spellings(statuses ...models.Status) []string {
	var out []string
	for _, s := range statuses {
		out = append(out, spellings[s]...)
	}
	return out
}

// Known возвращает все известные написания всех статусов в порядке сортировки.
func Known() []string {
	out := make([]string, 0, len(lookup))
	for raw := range lookup {
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}
