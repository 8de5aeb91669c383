// Package models содержит доменные структуры реестра членских взносов:
// обязательства участников, записи свободного учёта доходов и расходов,
// события об изменениях и данные о действующем лице.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind различает ежемесячный взнос и вступительный взнос.
type Kind string

const (
	// KindMonthly — ежемесячный взнос за конкретный период.
	KindMonthly Kind = "monthly"
	// KindEntrance — разовый вступительный взнос.
	KindEntrance Kind = "entrance"
)

// Obligation — запись о взносе участника.
// Для KindMonthly заполнен Period, для KindEntrance он нулевой.
type Obligation struct {
	ID         int64           `json:"id"`
	MemberID   string          `json:"member_id"`
	Kind       Kind            `json:"kind"`
	Period     Period          `json:"period"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Reference  *string         `json:"reference,omitempty"`
	ReviewedBy *string         `json:"reviewed_by,omitempty"` // Казначей, подтвердивший или отклонивший оплату
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UpsertParams описывает атомарную вставку или обновление обязательства по ключу.
type UpsertParams struct {
	MemberID  string
	Kind      Kind
	Period    Period // Игнорируется для KindEntrance
	Amount    decimal.Decimal
	Reference string
	Status    Status
	PaidAt    *time.Time
	ActorID   string
	// Guard перечисляет статусы, которые разрешено перезаписать. Пустой — любые.
	Guard []Status
	// KeepReference сохраняет прежнюю ссылку на платёж, если новая пустая.
	KeepReference bool
}

// StatusChange описывает перевод обязательства в новый статус.
type StatusChange struct {
	To      Status
	From    []Status // Допустимые исходные статусы
	PaidAt  *time.Time
	ActorID string
}

// ObligationFilter задаёт выборку обязательств для списков.
type ObligationFilter struct {
	MemberID string
	Kind     Kind
	Status   Status
	Year     int
	Limit    int
	Offset   int
}

// MonthLine — строка двенадцатимесячной ведомости участника.
// Месяцы без записи имеют статус unpaid и нулевой ID.
type MonthLine struct {
	Period     Period          `json:"period"`
	Obligation *Obligation     `json:"obligation,omitempty"`
	Status     Status          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Bucket     Bucket          `json:"bucket"`
}

// Bucket — категория месяца при расчёте задолженности.
type Bucket string

const (
	// BucketPaid — оплачено.
	BucketPaid Bucket = "paid"
	// BucketOutstanding — срок наступил, оплаты нет.
	BucketOutstanding Bucket = "outstanding"
	// BucketNotYetDue — месяц ещё не наступил.
	BucketNotYetDue Bucket = "not_yet_due"
)
