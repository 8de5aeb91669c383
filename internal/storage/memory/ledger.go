package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/paystatus"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

// CreateEntry сохраняет запись свободного учёта.
func (s *Storage) CreateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error) {
	const op = "memory.CreateEntry"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	s.entries[e.ID] = &e
	c := e
	return &c, nil
}

// UpdateEntry перезаписывает изменяемые поля записи.
func (s *Storage) UpdateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error) {
	const op = "memory.UpdateEntry"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[e.ID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	cur.Title = e.Title
	cur.Category = e.Category
	cur.Amount = e.Amount
	cur.Date = e.Date
	cur.Description = e.Description
	cur.UpdatedAt = s.now()
	c := *cur
	return &c, nil
}

// DeleteEntry удаляет запись.
func (s *Storage) DeleteEntry(ctx context.Context, id int64) error {
	const op = "memory.DeleteEntry"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

// GetEntry возвращает запись по ID.
func (s *Storage) GetEntry(ctx context.Context, id int64) (*models.DiscretionaryEntry, error) {
	const op = "memory.GetEntry"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	c := *e
	return &c, nil
}

// ListEntries возвращает записи по фильтру, новые первыми.
func (s *Storage) ListEntries(ctx context.Context, f models.EntryFilter) ([]models.DiscretionaryEntry, error) {
	const op = "memory.ListEntries"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.DiscretionaryEntry
	for _, e := range s.entries {
		if f.Polarity != "" && e.Polarity != f.Polarity {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID > result[j].ID
		}
		return result[i].Date.After(result[j].Date)
	})
	return paginate(result, f.Limit, f.Offset), nil
}

// SumPaid суммирует оплаченные обязательства.
func (s *Storage) SumPaid(ctx context.Context, kind models.Kind, year int) (decimal.Decimal, error) {
	const op = "memory.SumPaid"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, ob := range s.obligations {
		if ob.Kind != kind || paystatus.Normalize(string(ob.Status)) != models.StatusPaid {
			continue
		}
		if year != 0 && obligationYear(ob) != year {
			continue
		}
		total = total.Add(ob.Amount)
	}
	return total, nil
}

func obligationYear(ob *models.Obligation) int {
	if ob.Kind == models.KindMonthly {
		return ob.Period.Year
	}
	if ob.PaidAt != nil {
		return ob.PaidAt.Year()
	}
	return ob.CreatedAt.Year()
}

// ListMonthlyByYear возвращает ежемесячные записи всех участников за год.
func (s *Storage) ListMonthlyByYear(ctx context.Context, year int) ([]models.Obligation, error) {
	return s.ListObligations(ctx, models.ObligationFilter{Kind: models.KindMonthly, Year: year})
}

// SumEntries суммирует записи одного направления.
func (s *Storage) SumEntries(ctx context.Context, polarity models.Polarity) (decimal.Decimal, error) {
	const op = "memory.SumEntries"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.entries {
		if e.Polarity == polarity {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// TotalsByCategory группирует записи одного направления по категории.
func (s *Storage) TotalsByCategory(ctx context.Context, polarity models.Polarity) ([]models.CategoryTotal, error) {
	const op = "memory.TotalsByCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[string]*models.CategoryTotal)
	for _, e := range s.entries {
		if e.Polarity != polarity {
			continue
		}
		g, ok := groups[e.Category]
		if !ok {
			g = &models.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			groups[e.Category] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}
	result := make([]models.CategoryTotal, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}
