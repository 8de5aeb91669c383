package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Static — справочник в памяти для драйвера memory и тестов.
type Static struct {
	mu      sync.RWMutex
	members map[string]models.Member
}

// NewStatic создаёт справочник из заданных участников.
func NewStatic(members ...models.Member) *Static {
	s := &Static{members: make(map[string]models.Member, len(members))}
	for _, m := range members {
		s.members[m.ID] = m
	}
	return s
}

// Put добавляет или заменяет участника.
func (s *Static) Put(m models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

// MemberExists реализует Source.
func (s *Static) MemberExists(_ context.Context, memberID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[memberID]
	return ok, nil
}

// MemberDisplayName реализует Source.
func (s *Static) MemberDisplayName(_ context.Context, memberID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return "", fmt.Errorf("directory.Static: %w", models.ErrNotFound)
	}
	return m.DisplayName, nil
}

// ListActiveMembers реализует Source.
func (s *Static) ListActiveMembers(_ context.Context) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Member
	for _, m := range s.members {
		if m.Status == "active" {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
