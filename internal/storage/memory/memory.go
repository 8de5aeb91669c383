// Package memory — хранилище реестра в памяти процесса. Используется для
// локального запуска без PostgreSQL и в тестах сервисов. Все мутации
// выполняются под одним мьютексом, что даёт ту же атомарность ключа,
// что и ON CONFLICT в PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/paystatus"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

type obligationKey struct {
	memberID string
	kind     models.Kind
	period   models.Period
}

// Storage реализует storage.Store в памяти.
type Storage struct {
	mu          sync.Mutex
	now         func() time.Time
	nextID      int64
	obligations map[int64]*models.Obligation
	byKey       map[obligationKey]int64
	entries     map[int64]*models.DiscretionaryEntry
}

var _ storage.Store = (*Storage)(nil)

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		now:         time.Now,
		obligations: make(map[int64]*models.Obligation),
		byKey:       make(map[obligationKey]int64),
		entries:     make(map[int64]*models.DiscretionaryEntry),
	}
}

// WithClock подменяет источник времени для created_at/updated_at.
func (s *Storage) WithClock(now func() time.Time) *Storage {
	s.now = now
	return s
}

// Close ничего не делает.
func (s *Storage) Close() error { return nil }

// Ping всегда успешен, пока контекст не отменён.
func (s *Storage) Ping(ctx context.Context) error {
	return checkCtx(ctx, "memory.Ping")
}

// Seed кладёт запись как есть, в том числе со статусом старых версий.
// Нужен для тестов нормализации и импорта исторических данных.
func (s *Storage) Seed(ob models.Obligation) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ob.ID = s.nextID
	if ob.Kind == models.KindEntrance {
		ob.Period = models.Period{}
	}
	if ob.CreatedAt.IsZero() {
		ob.CreatedAt = s.now()
	}
	ob.UpdatedAt = ob.CreatedAt
	s.obligations[ob.ID] = &ob
	s.byKey[obligationKey{memberID: ob.MemberID, kind: ob.Kind, period: ob.Period}] = ob.ID
	return ob.ID
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, ctx.Err())
	default:
		return nil
	}
}

func clone(ob *models.Obligation) *models.Obligation {
	c := *ob
	c.Status = paystatus.Normalize(string(ob.Status))
	if ob.PaidAt != nil {
		t := *ob.PaidAt
		c.PaidAt = &t
	}
	if ob.Reference != nil {
		r := *ob.Reference
		c.Reference = &r
	}
	if ob.ReviewedBy != nil {
		r := *ob.ReviewedBy
		c.ReviewedBy = &r
	}
	return &c
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetYear возвращает ежемесячные записи участника за год, отсортированные по месяцу.
func (s *Storage) GetYear(ctx context.Context, memberID string, year int) ([]models.Obligation, error) {
	const op = "memory.GetYear"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Obligation
	for _, ob := range s.obligations {
		if ob.MemberID == memberID && ob.Kind == models.KindMonthly && ob.Period.Year == year {
			result = append(result, *clone(ob))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period.Month < result[j].Period.Month })
	return result, nil
}

// GetObligation возвращает обязательство по ID.
func (s *Storage) GetObligation(ctx context.Context, id int64) (*models.Obligation, error) {
	const op = "memory.GetObligation"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ob, ok := s.obligations[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return clone(ob), nil
}

// GetEntrance возвращает вступительный взнос участника.
func (s *Storage) GetEntrance(ctx context.Context, memberID string) (*models.Obligation, error) {
	const op = "memory.GetEntrance"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[obligationKey{memberID: memberID, kind: models.KindEntrance}]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return clone(s.obligations[id]), nil
}

// ListObligations возвращает обязательства по фильтру в порядке ID.
func (s *Storage) ListObligations(ctx context.Context, f models.ObligationFilter) ([]models.Obligation, error) {
	const op = "memory.ListObligations"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Obligation
	for _, ob := range s.obligations {
		c := clone(ob)
		if f.MemberID != "" && c.MemberID != f.MemberID {
			continue
		}
		if f.Kind != "" && c.Kind != f.Kind {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Year != 0 && c.Period.Year != f.Year {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginate(result, f.Limit, f.Offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// UpsertMonthly вставляет или обновляет ежемесячную запись.
func (s *Storage) UpsertMonthly(ctx context.Context, p models.UpsertParams) (*models.Obligation, error) {
	p.Kind = models.KindMonthly
	return s.upsert(ctx, "memory.UpsertMonthly", p)
}

// UpsertEntrance вставляет или обновляет вступительный взнос.
func (s *Storage) UpsertEntrance(ctx context.Context, p models.UpsertParams) (*models.Obligation, error) {
	p.Kind = models.KindEntrance
	p.Period = models.Period{}
	return s.upsert(ctx, "memory.UpsertEntrance", p)
}

func (s *Storage) upsert(ctx context.Context, op string, p models.UpsertParams) (*models.Obligation, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := obligationKey{memberID: p.MemberID, kind: p.Kind, period: p.Period}
	id, exists := s.byKey[key]
	if !exists {
		s.nextID++
		ob := &models.Obligation{
			ID:         s.nextID,
			MemberID:   p.MemberID,
			Kind:       p.Kind,
			Period:     p.Period,
			Amount:     p.Amount,
			Status:     p.Status,
			PaidAt:     p.PaidAt,
			Reference:  strPtr(p.Reference),
			ReviewedBy: reviewer(p),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.obligations[ob.ID] = ob
		s.byKey[key] = ob.ID
		return clone(ob), nil
	}

	ob := s.obligations[id]
	current := paystatus.Normalize(string(ob.Status))
	if len(p.Guard) > 0 && !current.In(p.Guard...) {
		return clone(ob), fmt.Errorf("%s: %w", op, storage.ErrGuardRejected)
	}

	// при повторном ручном вводе дата первой оплаты сохраняется
	keepPaidAt := p.Status == models.StatusPaid && current == models.StatusPaid && ob.PaidAt != nil
	if !keepPaidAt {
		ob.PaidAt = p.PaidAt
	}
	ob.Amount = p.Amount
	ob.Status = p.Status
	if p.Reference != "" || !p.KeepReference {
		ob.Reference = strPtr(p.Reference)
	}
	ob.ReviewedBy = reviewer(p)
	ob.UpdatedAt = now
	return clone(ob), nil
}

func reviewer(p models.UpsertParams) *string {
	if p.Status == models.StatusPaid || p.Status == models.StatusFailed {
		return strPtr(p.ActorID)
	}
	return nil
}

// SetStatus переводит обязательство в новый статус.
func (s *Storage) SetStatus(ctx context.Context, id int64, change models.StatusChange) (*models.Obligation, bool, error) {
	const op = "memory.SetStatus"
	if err := checkCtx(ctx, op); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ob, ok := s.obligations[id]
	if !ok {
		return nil, false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	current := paystatus.Normalize(string(ob.Status))
	if current == change.To {
		return clone(ob), false, nil
	}
	if len(change.From) > 0 && !current.In(change.From...) {
		return clone(ob), false, fmt.Errorf("%s: %w", op, storage.ErrTransitionRejected)
	}

	ob.Status = change.To
	ob.PaidAt = change.PaidAt
	ob.ReviewedBy = strPtr(change.ActorID)
	ob.UpdatedAt = s.now()
	return clone(ob), true, nil
}

// DeleteObligation удаляет обязательство.
func (s *Storage) DeleteObligation(ctx context.Context, id int64) error {
	const op = "memory.DeleteObligation"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ob, ok := s.obligations[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	delete(s.byKey, obligationKey{memberID: ob.MemberID, kind: ob.Kind, period: ob.Period})
	delete(s.obligations, id)
	return nil
}
