package repository

import (
	"context"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// MemberExists проверяет наличие участника в справочнике.
func (s *Storage) MemberExists(ctx context.Context, memberID string) (bool, error) {
	const op = "storage.MemberExists"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return false, err
	}
	defer cancel()

	var exists bool
	err = s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`, memberID).Scan(&exists)
	if err != nil {
		return false, wrapErr(op, err)
	}
	return exists, nil
}

// MemberDisplayName возвращает отображаемое имя участника.
func (s *Storage) MemberDisplayName(ctx context.Context, memberID string) (string, error) {
	const op = "storage.MemberDisplayName"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return "", err
	}
	defer cancel()

	var name string
	err = s.DB.QueryRowContext(ctx,
		`SELECT display_name FROM members WHERE id = $1`, memberID).Scan(&name)
	if err != nil {
		return "", wrapErr(op, err)
	}
	return name, nil
}

// ListActiveMembers возвращает участников со статусом active.
func (s *Storage) ListActiveMembers(ctx context.Context) ([]models.Member, error) {
	const op = "storage.ListActiveMembers"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, display_name, status, joined_at
		FROM members
		WHERE status = 'active'
		ORDER BY id`)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.Status, &m.JoinedAt); err != nil {
			return nil, wrapErr(op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}
