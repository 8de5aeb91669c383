package models

import (
	"fmt"
	"time"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Period задаёт месяц и год ежемесячного взноса.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Validate проверяет, что месяц лежит в [1,12], а год в разумных границах.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, p.Month)
	}
	if p.Year < minYear || p.Year > maxYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Start возвращает первый день периода в UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%02d-%d", p.Month, p.Year)
}
