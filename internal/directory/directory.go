// Package directory обращается к внешнему справочнику участников.
// Ошибки справочника не блокируют работу реестра: отображаемое имя
// в этом случае заменяется заглушкой.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Source — хранилище справочника (таблица members в PostgreSQL или Static).
type Source interface {
	MemberExists(ctx context.Context, memberID string) (bool, error)
	MemberDisplayName(ctx context.Context, memberID string) (string, error)
	ListActiveMembers(ctx context.Context) ([]models.Member, error)
}

// NameCache кэширует отображаемые имена. Реализуется cache.Cache.
type NameCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Directory отдаёт сведения об участниках с кэшированием имён.
type Directory struct {
	log   *slog.Logger
	src   Source
	cache NameCache
	ttl   time.Duration
}

// New создаёт Directory. cache может быть nil.
func New(log *slog.Logger, src Source, cache NameCache, ttl time.Duration) *Directory {
	return &Directory{log: log, src: src, cache: cache, ttl: ttl}
}

// Placeholder — подпись участника, имя которого получить не удалось.
func Placeholder(memberID string) string {
	return "member " + memberID
}

func nameKey(memberID string) string {
	return "member:name:" + memberID
}

// MemberExists сообщает, известен ли участник справочнику.
func (d *Directory) MemberExists(ctx context.Context, memberID string) (bool, error) {
	const op = "directory.MemberExists"
	ok, err := d.src.MemberExists(ctx, memberID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// MemberDisplayName возвращает имя участника. Никогда не возвращает ошибку:
// при любом сбое отдаётся Placeholder.
func (d *Directory) MemberDisplayName(ctx context.Context, memberID string) string {
	const op = "directory.MemberDisplayName"
	log := d.log.With(slog.String("op", op), slog.String("member_id", memberID))

	if d.cache != nil {
		var name string
		found, err := d.cache.Get(ctx, nameKey(memberID), &name)
		if err != nil {
			log.Warn("name cache read failed", sl.Err(err))
		} else if found {
			return name
		}
	}

	name, err := d.src.MemberDisplayName(ctx, memberID)
	if err != nil || name == "" {
		if err != nil {
			log.Warn("member lookup failed, using placeholder", sl.Err(err))
		}
		return Placeholder(memberID)
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, nameKey(memberID), name, d.ttl); err != nil {
			log.Warn("name cache write failed", sl.Err(err))
		}
	}
	return name
}

// ListActiveMembers возвращает активных участников.
func (d *Directory) ListActiveMembers(ctx context.Context) ([]models.Member, error) {
	const op = "directory.ListActiveMembers"
	members, err := d.src.ListActiveMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}
