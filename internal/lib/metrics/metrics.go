// Package metrics объявляет счётчики Prometheus реестра взносов.
// Метрики регистрируются в реестре по умолчанию и отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReconciliationOutcomes считает исходы операций сверки.
// operation: claim, entrance_claim, confirm, reject, backfill, entrance_backfill, remove.
// outcome: ok, noop, rejected, invalid, error.
var ReconciliationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dues_ledger",
	Subsystem: "reconciliation",
	Name:      "outcomes_total",
	Help:      "Reconciliation operations by outcome.",
}, []string{"operation", "outcome"})

// LedgerEntries считает изменения свободного учёта.
var LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dues_ledger",
	Subsystem: "ledger",
	Name:      "entries_total",
	Help:      "Discretionary ledger mutations by polarity and action.",
}, []string{"polarity", "action"})

// NotifierFailures считает события, которые не удалось опубликовать.
var NotifierFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dues_ledger",
	Subsystem: "notifier",
	Name:      "failures_total",
	Help:      "Change events that could not be published.",
}, []string{"entity_type"})

// StorageRetries считает повторы операций после ErrStorageUnavailable.
var StorageRetries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dues_ledger",
	Subsystem: "storage",
	Name:      "retries_total",
	Help:      "Storage operations retried after a transient failure.",
})

// RemindersPublished считает разосланные напоминания о задолженности.
var RemindersPublished = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dues_ledger",
	Subsystem: "reminder",
	Name:      "published_total",
	Help:      "Arrears reminders published to the broker.",
})

// HTTPRequestDuration — длительность HTTP-запросов по маршруту.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "dues_ledger",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "status"})
