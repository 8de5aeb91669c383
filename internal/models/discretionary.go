package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Polarity — направление записи свободного учёта.
type Polarity string

const (
	// PolarityIncome — поступление (пожертвования, спонсорство).
	PolarityIncome Polarity = "income"
	// PolarityExpense — расход по одной из закрытых категорий.
	PolarityExpense Polarity = "expense"
)

// ExpenseCategory — закрытый перечень категорий расходов.
type ExpenseCategory string

const (
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryActivities  ExpenseCategory = "activities"
	CategoryWelfare     ExpenseCategory = "welfare"
	CategoryOther       ExpenseCategory = "other"
)

// ExpenseCategories возвращает все категории расходов в фиксированном порядке.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{CategoryMaintenance, CategoryActivities, CategoryWelfare, CategoryOther}
}

// ParseExpenseCategory возвращает ErrInvalidCategory для неизвестных значений.
func ParseExpenseCategory(raw string) (ExpenseCategory, error) {
	c := ExpenseCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ExpenseCategories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// DiscretionaryEntry — строка учёта, не привязанная к участнику.
// Для расходов Category — значение ExpenseCategory, для доходов — открытый тег источника.
type DiscretionaryEntry struct {
	ID          int64           `json:"id"`
	Polarity    Polarity        `json:"polarity"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EntryFilter задаёт выборку записей свободного учёта.
type EntryFilter struct {
	Polarity Polarity
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// CategoryTotal — итог по одной категории или источнику.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}
