package models

import "time"

// EntityType — тип сущности в событии об изменении.
type EntityType string

const (
	EntityObligation EntityType = "obligation"
	EntityLedger     EntityType = "ledger_entry"
)

// ChangeEvent публикуется после каждой успешной мутации.
// Доставка не гарантирована ровно один раз, ID нужен потребителю для дедупликации.
type ChangeEvent struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   int64      `json:"entity_id"`
	NewState   string     `json:"new_state"`
	ActorID    string     `json:"actor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Reminder — напоминание участнику о задолженности.
type Reminder struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Year        int    `json:"year"`
	Outstanding string `json:"outstanding"`
	DueMonths   int    `json:"due_months"`
}
