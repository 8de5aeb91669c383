package models

import "time"

// Member — запись внешнего справочника участников. Реестр ею не владеет.
type Member struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"` // active, pending или inactive
	JoinedAt    time.Time `json:"joined_at"`
}
